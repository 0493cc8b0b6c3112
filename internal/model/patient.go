package model

import (
	"strings"
)

const (
	GenderMale    = "male"
	GenderFemale  = "female"
	GenderOther   = "other"
	GenderUnknown = "unknown"
)

type HumanName struct {
	Use    string   `json:"use,omitempty"`
	Family string   `json:"family,omitempty"`
	Given  []string `json:"given,omitempty"`
	Prefix []string `json:"prefix,omitempty"`
	Suffix []string `json:"suffix,omitempty"`
}

// ContactPoint is a phone, email or fax entry.
type ContactPoint struct {
	System string `json:"system"`
	Value  string `json:"value"`
	Use    string `json:"use,omitempty"`
}

type Address struct {
	Use        string   `json:"use,omitempty"`
	Line       []string `json:"line,omitempty"`
	City       string   `json:"city,omitempty"`
	State      string   `json:"state,omitempty"`
	PostalCode string   `json:"postalCode,omitempty"`
	Country    string   `json:"country,omitempty"`
}

type Coding struct {
	System  string `json:"system,omitempty"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
}

type CodeableConcept struct {
	Coding []Coding `json:"coding,omitempty"`
	Text   string   `json:"text,omitempty"`
}

type Identifier struct {
	Use    string           `json:"use,omitempty"`
	System string           `json:"system,omitempty"`
	Value  string           `json:"value"`
	Type   *CodeableConcept `json:"type,omitempty"`
}

type Meta struct {
	LastUpdated string `json:"lastUpdated,omitempty"`
	VersionID   string `json:"versionId,omitempty"`
}

// Patient is a person record as served by the FHIR API. MedicalHistory and
// Allergies are extensions carried by the mock API.
type Patient struct {
	ResourceType   string         `json:"resourceType"`
	ID             string         `json:"id,omitempty"`
	Identifier     []Identifier   `json:"identifier,omitempty"`
	Active         *bool          `json:"active,omitempty"`
	Name           []HumanName    `json:"name,omitempty"`
	Telecom        []ContactPoint `json:"telecom,omitempty"`
	Gender         string         `json:"gender,omitempty"`
	BirthDate      string         `json:"birthDate,omitempty"`
	Address        []Address      `json:"address,omitempty"`
	Meta           *Meta          `json:"meta,omitempty"`
	MedicalHistory []string       `json:"medicalHistory,omitempty"`
	Allergies      []string       `json:"allergies,omitempty"`
}

// DisplayName renders the first name entry as "Given Given Family".
func (p *Patient) DisplayName() string {
	if len(p.Name) == 0 {
		return "Unknown"
	}
	n := p.Name[0]
	parts := make([]string, 0, len(n.Given)+1)
	for _, g := range n.Given {
		if g = strings.TrimSpace(g); g != "" {
			parts = append(parts, g)
		}
	}
	if f := strings.TrimSpace(n.Family); f != "" {
		parts = append(parts, f)
	}
	name := strings.Join(parts, " ")
	if name == "" {
		return "Unknown"
	}
	return name
}

// Initial is the avatar letter of the display name.
func (p *Patient) Initial() string {
	for _, r := range p.DisplayName() {
		return strings.ToUpper(string(r))
	}
	return "?"
}

func (p *Patient) telecom(system string) string {
	for _, t := range p.Telecom {
		if t.System == system {
			return t.Value
		}
	}
	return ""
}

func (p *Patient) Phone() string {
	return p.telecom("phone")
}

func (p *Patient) Email() string {
	return p.telecom("email")
}

// AddressLine formats the first address as "line1, line2, City, ST 12345".
func (p *Patient) AddressLine() string {
	if len(p.Address) == 0 {
		return "No address on file"
	}
	a := p.Address[0]

	parts := make([]string, 0, len(a.Line)+2)
	for _, l := range a.Line {
		if l = strings.TrimSpace(l); l != "" {
			parts = append(parts, l)
		}
	}
	if a.City != "" {
		parts = append(parts, a.City)
	}
	if tail := strings.TrimSpace(a.State + " " + a.PostalCode); tail != "" {
		parts = append(parts, tail)
	}

	line := strings.Trim(strings.Join(parts, ", "), ", ")
	if line == "" {
		return "No address on file"
	}
	return line
}

// PreferredIdentifier returns the MRN when present, else the first identifier.
func (p *Patient) PreferredIdentifier() string {
	for _, id := range p.Identifier {
		if strings.Contains(strings.ToLower(id.System), "mrn") {
			return id.Value
		}
		if id.Type != nil && strings.Contains(strings.ToLower(id.Type.Text), "mrn") {
			return id.Value
		}
	}
	if len(p.Identifier) > 0 {
		return p.Identifier[0].Value
	}
	return ""
}

// IsActive reports the active flag. An absent flag reads as inactive.
func (p *Patient) IsActive() bool {
	return p.Active != nil && *p.Active
}

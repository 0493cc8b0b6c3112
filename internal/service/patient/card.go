package patient

import (
	"github.com/jwalitptl/clinic-dashboard/internal/model"
)

// Card is the list rendering of a patient.
type Card struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Initial    string `json:"initial"`
	Identifier string `json:"identifier,omitempty"`
	Gender     string `json:"gender,omitempty"`
	BirthDate  string `json:"birthDate,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
	Address    string `json:"address"`
	Active     bool   `json:"active"`
}

func NewCard(p *model.Patient) Card {
	return Card{
		ID:         p.ID,
		Name:       p.DisplayName(),
		Initial:    p.Initial(),
		Identifier: p.PreferredIdentifier(),
		Gender:     p.Gender,
		BirthDate:  p.BirthDate,
		Phone:      p.Phone(),
		Email:      p.Email(),
		Address:    p.AddressLine(),
		Active:     p.IsActive(),
	}
}

func Cards(patients []model.Patient) []Card {
	out := make([]Card, 0, len(patients))
	for i := range patients {
		out = append(out, NewCard(&patients[i]))
	}
	return out
}

// Detail is the full rendering of one patient.
type Detail struct {
	Card
	MedicalHistory []string           `json:"medicalHistory"`
	Allergies      []string           `json:"allergies"`
	Identifiers    []model.Identifier `json:"identifiers"`
}

func NewDetail(p *model.Patient) Detail {
	d := Detail{
		Card:           NewCard(p),
		MedicalHistory: p.MedicalHistory,
		Allergies:      p.Allergies,
		Identifiers:    p.Identifier,
	}
	if d.MedicalHistory == nil {
		d.MedicalHistory = []string{}
	}
	if d.Allergies == nil {
		d.Allergies = []string{}
	}
	if d.Identifiers == nil {
		d.Identifiers = []model.Identifier{}
	}
	return d
}

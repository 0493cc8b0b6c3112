package model

const (
	ResourceTypeBundle           = "Bundle"
	ResourceTypePatient          = "Patient"
	ResourceTypeAppointment      = "Appointment"
	ResourceTypeOperationOutcome = "OperationOutcome"
)

// BundleEntry is a single entry of a Bundle.
type BundleEntry[T any] struct {
	FullURL  string `json:"fullUrl,omitempty"`
	Resource T      `json:"resource"`
}

// Bundle is a searchset or collection envelope.
type Bundle[T any] struct {
	ResourceType string           `json:"resourceType"`
	Type         string           `json:"type"`
	Total        *int             `json:"total,omitempty"`
	Entry        []BundleEntry[T] `json:"entry,omitempty"`
}

// Resources flattens the entries. A bundle without entries yields an empty
// slice, never nil.
func (b *Bundle[T]) Resources() []T {
	out := make([]T, 0, len(b.Entry))
	for _, e := range b.Entry {
		out = append(out, e.Resource)
	}
	return out
}

type OutcomeIssue struct {
	Severity    string           `json:"severity"`
	Code        string           `json:"code"`
	Details     *CodeableConcept `json:"details,omitempty"`
	Diagnostics string           `json:"diagnostics,omitempty"`
}

// OperationOutcome is the structured error body of the FHIR API.
type OperationOutcome struct {
	ResourceType string         `json:"resourceType"`
	Issue        []OutcomeIssue `json:"issue"`
}

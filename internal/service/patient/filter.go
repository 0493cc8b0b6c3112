package patient

import (
	"strings"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
)

// Filter applies params conjunctively. Empty or nil params return the
// collection unchanged.
func Filter(patients []model.Patient, params *model.PatientSearchParams) []model.Patient {
	if params.IsEmpty() {
		return patients
	}

	name := strings.ToLower(params.Name)
	identifier := strings.ToLower(params.Identifier)

	out := make([]model.Patient, 0, len(patients))
	for i := range patients {
		p := &patients[i]

		if name != "" && !strings.Contains(strings.ToLower(p.DisplayName()), name) {
			continue
		}
		if identifier != "" && !matchesIdentifier(p, identifier) {
			continue
		}
		if params.BirthDate != "" && p.BirthDate != params.BirthDate {
			continue
		}
		if params.Gender != "" && p.Gender != params.Gender {
			continue
		}
		if params.Active != nil && p.IsActive() != *params.Active {
			continue
		}

		out = append(out, *p)
	}
	return out
}

func matchesIdentifier(p *model.Patient, needle string) bool {
	if strings.Contains(strings.ToLower(p.ID), needle) {
		return true
	}
	for _, id := range p.Identifier {
		if strings.Contains(strings.ToLower(id.Value), needle) {
			return true
		}
	}
	return false
}

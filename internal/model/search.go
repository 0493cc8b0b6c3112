package model

// PatientSearchParams are the criteria for a patient search. Empty strings
// mean the criterion is absent.
type PatientSearchParams struct {
	Name       string `json:"name,omitempty" form:"name"`
	Identifier string `json:"identifier,omitempty" form:"identifier"`
	BirthDate  string `json:"birthdate,omitempty" form:"birthdate"`
	Gender     string `json:"gender,omitempty" form:"gender"`
	Phone      string `json:"phone,omitempty" form:"phone"`
	Email      string `json:"email,omitempty" form:"email"`
	Address    string `json:"address,omitempty" form:"address"`
	Active     *bool  `json:"active,omitempty"`
}

func (p *PatientSearchParams) IsEmpty() bool {
	if p == nil {
		return true
	}
	return p.Name == "" &&
		p.Identifier == "" &&
		p.BirthDate == "" &&
		p.Gender == "" &&
		p.Phone == "" &&
		p.Email == "" &&
		p.Address == "" &&
		p.Active == nil
}

// AppointmentFilter narrows the appointment schedule. A Status of "" or
// "all" disables the status filter.
type AppointmentFilter struct {
	Name   string `json:"name,omitempty" form:"name"`
	Status string `json:"status,omitempty" form:"status"`
}

func (f AppointmentFilter) StatusFilter() (AppointmentStatus, bool) {
	if f.Status == "" || f.Status == "all" {
		return "", false
	}
	return AppointmentStatus(f.Status), true
}

package dto

// CreateEmployeeRequest is the payload of POST /manager/create-employee.
// ContactNumber is accepted as an alias of MobileNumber.
type CreateEmployeeRequest struct {
	Name           string `json:"name" validate:"required,min=2,max=50"`
	Email          string `json:"email" validate:"required,email"`
	Role           string `json:"role" validate:"omitempty,oneof=employee developer designer qualityAssurance manager admin"`
	MobileNumber   string `json:"mobileNumber"`
	ContactNumber  string `json:"contactNumber"`
	CompanyEmail   string `json:"companyEmail" validate:"omitempty,email"`
	PersonalEmail  string `json:"personalEmail" validate:"omitempty,email"`
	Department     string `json:"department"`
	JobDescription string `json:"jobDescription"`
	ManagerID      string `json:"managerId"`
}

// Mobile returns the phone number from whichever field carried it.
func (r CreateEmployeeRequest) Mobile() string {
	if r.MobileNumber != "" {
		return r.MobileNumber
	}
	return r.ContactNumber
}

// UpdateEmployeeRequest is the payload of PATCH /manager/employee/:id. Empty
// values are ignored.
type UpdateEmployeeRequest struct {
	Name           string `json:"name" validate:"omitempty,min=2,max=50"`
	MobileNumber   string `json:"mobileNumber"`
	CompanyEmail   string `json:"companyEmail" validate:"omitempty,email"`
	PersonalEmail  string `json:"personalEmail" validate:"omitempty,email"`
	Department     string `json:"department"`
	JobDescription string `json:"jobDescription"`
	Role           string `json:"role" validate:"omitempty,oneof=employee developer designer qualityAssurance manager admin"`
}

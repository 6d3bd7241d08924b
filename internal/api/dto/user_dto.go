package dto

import (
	"time"

	"github.com/spec-kit/workforce-service/internal/domain"
)

// SignupRequest payload for self-registration.
type SignupRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=50"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6,max=72"`
	MobileNumber string `json:"mobileNumber"`
	Role         string `json:"role" validate:"omitempty,oneof=employee developer designer qualityAssurance manager admin"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// ForgotPasswordRequest payload.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest payload.
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required,min=10"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// UpdateProfileRequest payload. Absent fields are left untouched.
type UpdateProfileRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=2,max=50"`
	Email        *string `json:"email" validate:"omitempty,email"`
	MobileNumber *string `json:"mobileNumber"`
}

// AuthResponse carries an issued session.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// UserResponse is the public view of an account. Secrets never leave the
// service.
type UserResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Role           string     `json:"role"`
	ManagerID      *string    `json:"managerId"`
	MobileNumber   string     `json:"mobileNumber,omitempty"`
	CompanyEmail   string     `json:"companyEmail,omitempty"`
	PersonalEmail  string     `json:"personalEmail,omitempty"`
	Department     string     `json:"department,omitempty"`
	JobDescription string     `json:"jobDescription,omitempty"`
	ProfileImage   string     `json:"profileImage,omitempty"`
	IsVerified     bool       `json:"isVerified"`
	LastLogin      *time.Time `json:"lastLogin,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role.String(),
		ManagerID:      u.ManagerID,
		MobileNumber:   u.MobileNumber,
		CompanyEmail:   u.CompanyEmail,
		PersonalEmail:  u.PersonalEmail,
		Department:     u.Department,
		JobDescription: u.JobDescription,
		ProfileImage:   u.ProfileImage,
		IsVerified:     u.IsVerified,
		LastLogin:      u.LastLoginAt,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

// NewUserList maps a slice of users.
func NewUserList(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}

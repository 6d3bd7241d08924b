package domain

import (
	"strings"
	"time"
)

// User is an actor of the system regardless of role.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	ManagerID    *string

	MobileNumber   string
	CompanyEmail   string
	PersonalEmail  string
	Department     string
	JobDescription string
	ProfileImage   string

	IsVerified               bool
	EmailVerificationToken   *string
	EmailVerificationExpires *time.Time
	ResetPasswordToken       *string
	ResetPasswordExpires     *time.Time

	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Manager returns the manager reference or "" when the user has none.
func (u *User) Manager() string {
	if u == nil || u.ManagerID == nil {
		return ""
	}
	return *u.ManagerID
}

// ReportsTo reports whether the user's manager reference is managerID.
func (u *User) ReportsTo(managerID string) bool {
	return managerID != "" && u.Manager() == managerID
}

// SetVerificationToken stores a hashed verification token with its expiry.
func (u *User) SetVerificationToken(hash string, expires time.Time) {
	u.EmailVerificationToken = &hash
	u.EmailVerificationExpires = &expires
}

// SetResetToken stores a hashed reset token with its expiry.
func (u *User) SetResetToken(hash string, expires time.Time) {
	u.ResetPasswordToken = &hash
	u.ResetPasswordExpires = &expires
}

// ClearVerificationToken drops the verification pair.
func (u *User) ClearVerificationToken() {
	u.EmailVerificationToken = nil
	u.EmailVerificationExpires = nil
}

// ClearResetToken drops the reset pair.
func (u *User) ClearResetToken() {
	u.ResetPasswordToken = nil
	u.ResetPasswordExpires = nil
}

// VerificationTokenMatches reports whether hash is live at now.
func (u *User) VerificationTokenMatches(hash string, now time.Time) bool {
	return tokenLive(u.EmailVerificationToken, u.EmailVerificationExpires, hash, now)
}

// ResetTokenMatches reports whether hash is live at now.
func (u *User) ResetTokenMatches(hash string, now time.Time) bool {
	return tokenLive(u.ResetPasswordToken, u.ResetPasswordExpires, hash, now)
}

// A token presented at exactly its expiry instant is dead.
func tokenLive(stored *string, expires *time.Time, hash string, now time.Time) bool {
	if stored == nil || expires == nil || hash == "" {
		return false
	}
	return *stored == hash && now.Before(*expires)
}

// NormalizeEmail lower-cases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserPatch carries profile or employee field updates. Nil means untouched.
type UserPatch struct {
	Name           *string
	Email          *string
	MobileNumber   *string
	CompanyEmail   *string
	PersonalEmail  *string
	Department     *string
	JobDescription *string
	Role           *Role
}

// Apply copies the set fields onto u.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = NormalizeEmail(*p.Email)
	}
	if p.MobileNumber != nil {
		u.MobileNumber = *p.MobileNumber
	}
	if p.CompanyEmail != nil {
		u.CompanyEmail = *p.CompanyEmail
	}
	if p.PersonalEmail != nil {
		u.PersonalEmail = *p.PersonalEmail
	}
	if p.Department != nil {
		u.Department = *p.Department
	}
	if p.JobDescription != nil {
		u.JobDescription = *p.JobDescription
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
}

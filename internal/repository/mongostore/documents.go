package mongostore

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/spec-kit/workforce-service/internal/domain"
)

type userDocument struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty"`
	Name           string              `bson:"name"`
	Email          string              `bson:"email"`
	PasswordHash   string              `bson:"password_hash"`
	Role           string              `bson:"role"`
	Manager        *primitive.ObjectID `bson:"manager,omitempty"`
	MobileNumber   string              `bson:"mobile_number"`
	CompanyEmail   string              `bson:"company_email"`
	PersonalEmail  string              `bson:"personal_email"`
	Department     string              `bson:"department"`
	JobDescription string              `bson:"job_description"`
	ProfileImage   string              `bson:"profile_image"`
	IsVerified     bool                `bson:"is_verified"`

	EmailVerificationToken   *string    `bson:"email_verification_token,omitempty"`
	EmailVerificationExpires *time.Time `bson:"email_verification_expires,omitempty"`
	ResetPasswordToken       *string    `bson:"reset_password_token,omitempty"`
	ResetPasswordExpires     *time.Time `bson:"reset_password_expires,omitempty"`

	LastLoginAt *time.Time `bson:"last_login_at,omitempty"`
	CreatedAt   time.Time  `bson:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at"`
}

func (d userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:                       d.ID.Hex(),
		Name:                     d.Name,
		Email:                    d.Email,
		PasswordHash:             d.PasswordHash,
		Role:                     domain.Role(d.Role),
		ManagerID:                hexPtr(d.Manager),
		MobileNumber:             d.MobileNumber,
		CompanyEmail:             d.CompanyEmail,
		PersonalEmail:            d.PersonalEmail,
		Department:               d.Department,
		JobDescription:           d.JobDescription,
		ProfileImage:             d.ProfileImage,
		IsVerified:               d.IsVerified,
		EmailVerificationToken:   d.EmailVerificationToken,
		EmailVerificationExpires: d.EmailVerificationExpires,
		ResetPasswordToken:       d.ResetPasswordToken,
		ResetPasswordExpires:     d.ResetPasswordExpires,
		LastLoginAt:              d.LastLoginAt,
		CreatedAt:                d.CreatedAt,
		UpdatedAt:                d.UpdatedAt,
	}
}

type taskDocument struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	Title       string               `bson:"title"`
	Description string               `bson:"description"`
	AssignedBy  primitive.ObjectID   `bson:"assigned_by"`
	AssignedTo  []primitive.ObjectID `bson:"assigned_to"`
	Status      string               `bson:"status"`
	Priority    string               `bson:"priority"`
	StartDate   *time.Time           `bson:"start_date,omitempty"`
	DueDate     *time.Time           `bson:"due_date,omitempty"`
	CompletedAt *time.Time           `bson:"completed_at,omitempty"`
	ReviewedBy  *primitive.ObjectID  `bson:"reviewed_by,omitempty"`
	Remarks     string               `bson:"remarks"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

func (d taskDocument) toDomain() domain.Task {
	assigned := make([]string, len(d.AssignedTo))
	for i, id := range d.AssignedTo {
		assigned[i] = id.Hex()
	}
	return domain.Task{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		AssignedBy:  d.AssignedBy.Hex(),
		AssignedTo:  assigned,
		Status:      domain.TaskStatus(d.Status),
		Priority:    domain.Priority(d.Priority),
		StartDate:   d.StartDate,
		DueDate:     d.DueDate,
		CompletedAt: d.CompletedAt,
		ReviewedBy:  hexPtr(d.ReviewedBy),
		Remarks:     d.Remarks,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type commentDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Author    primitive.ObjectID `bson:"author"`
	Text      string             `bson:"text"`
	CreatedAt time.Time          `bson:"created_at"`
}

type ticketDocument struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty"`
	CreatedBy   primitive.ObjectID  `bson:"created_by"`
	AssignedTo  *primitive.ObjectID `bson:"assigned_to,omitempty"`
	Title       string              `bson:"title"`
	Description string              `bson:"description"`
	Status      string              `bson:"status"`
	Priority    string              `bson:"priority"`
	Comments    []commentDocument   `bson:"comments"`
	CreatedAt   time.Time           `bson:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at"`
}

func (d ticketDocument) toDomain() *domain.Ticket {
	ticket := &domain.Ticket{
		ID:          d.ID.Hex(),
		CreatedBy:   d.CreatedBy.Hex(),
		AssignedTo:  hexPtr(d.AssignedTo),
		Title:       d.Title,
		Description: d.Description,
		Status:      domain.TicketStatus(d.Status),
		Priority:    domain.Priority(d.Priority),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	for _, c := range d.Comments {
		ticket.Comments = append(ticket.Comments, domain.TicketComment{
			ID:        c.ID.Hex(),
			TicketID:  ticket.ID,
			AuthorID:  c.Author.Hex(),
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
		})
	}
	return ticket
}

func hexPtr(id *primitive.ObjectID) *string {
	if id == nil || id.IsZero() {
		return nil
	}
	s := id.Hex()
	return &s
}

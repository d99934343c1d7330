package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles assignable at signup. Reviewers triage and dispose of reports;
// public users only submit and read their own.
const (
	RolePublic   = "public"
	RoleReviewer = "reviewer"
)

type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Email     string         `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Phone     string         `gorm:"size:40" json:"phone,omitempty"`
	Password  string         `gorm:"not null" json:"-"`
	Role      string         `gorm:"size:20;default:'public'" json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate ensures UUID is set before creation
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) IsReviewer() bool {
	return u.Role == RoleReviewer
}

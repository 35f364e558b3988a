package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User mirrors the auth provider's account for local joins and profile edits
type User struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Email     string    `gorm:"size:255;not null;index" json:"email"`
	Name      *string   `gorm:"size:255" json:"name"`
	Image     *string   `gorm:"size:1024" json:"image"`
	Phone     *string   `gorm:"size:64" json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserRole holds the one role row per identity
type UserRole struct {
	UserID    string `gorm:"primaryKey;size:64"`
	Role      Role   `gorm:"size:32;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserApplicationProfile is the finance and rental history a tenant fills in once
// and reuses across applications
type UserApplicationProfile struct {
	UserID string `gorm:"primaryKey;size:64" json:"userId"`

	// Finance
	EmploymentStatus *string             `gorm:"size:64" json:"employmentStatus"`
	Employer         *string             `gorm:"size:255" json:"employer"`
	JobTitle         *string             `gorm:"size:255" json:"jobTitle"`
	AnnualIncome     decimal.NullDecimal `gorm:"type:decimal(14,2)" json:"annualIncome"`
	HasGuarantor     *bool               `json:"hasGuarantor"`

	// Rental history and preferences
	CurrentAddress  *string             `gorm:"size:512" json:"currentAddress"`
	CurrentRent     decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"currentRent"`
	YearsAtAddress  *int                `json:"yearsAtAddress"`
	ReasonForMoving *string             `gorm:"size:1024" json:"reasonForMoving"`
	HasPets         *bool               `json:"hasPets"`
	IsSmoker        *bool               `json:"isSmoker"`
	Occupants       *int                `json:"occupants"`

	// Documents is a map of document kind to DocumentRef
	Documents JSON `json:"documents"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DocumentRef points at an uploaded object in document storage
type DocumentRef struct {
	Key         string    `json:"key"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// DocumentMap decodes the documents bag. A missing bag is an empty map.
func (p *UserApplicationProfile) DocumentMap() (map[string]DocumentRef, error) {
	docs := map[string]DocumentRef{}
	if p == nil {
		return docs, nil
	}
	if err := p.Documents.Decode(&docs); err != nil {
		return nil, err
	}
	if docs == nil {
		docs = map[string]DocumentRef{}
	}
	return docs, nil
}

// TableName overrides the table name for UserRole
func (UserRole) TableName() string {
	return "user_roles"
}

// TableName overrides the table name for UserApplicationProfile
func (UserApplicationProfile) TableName() string {
	return "user_application_profiles"
}

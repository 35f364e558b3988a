package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Status is the lifecycle state of an application
type Status string

const (
	StatusDraft       Status = "draft"
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusWithdrawn   Status = "withdrawn"
)

// Statuses is the full status enumeration
var Statuses = []Status{
	StatusDraft,
	StatusSubmitted,
	StatusUnderReview,
	StatusApproved,
	StatusRejected,
	StatusWithdrawn,
}

// ParseStatus validates a status value against the enumeration
func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// ApplicationType distinguishes single applicants from groups
type ApplicationType string

const (
	ApplicationIndividual ApplicationType = "individual"
	ApplicationGroup      ApplicationType = "group"
)

// OccupancyType is the requested occupancy of a room or unit
type OccupancyType string

const (
	OccupancySingle OccupancyType = "single"
	OccupancyDual   OccupancyType = "dual"
)

// Application is a prospective tenancy. UserID never changes after creation.
type Application struct {
	ID              string              `gorm:"primaryKey;size:36" json:"id"`
	UserID          string              `gorm:"size:64;not null;index:idx_applications_user_created,priority:1" json:"userId"`
	PropertyID      string              `gorm:"size:36;not null;index" json:"propertyId"`
	UnitID          *string             `gorm:"size:36;index" json:"unitId"`
	ApplicationType ApplicationType     `gorm:"size:16;not null" json:"applicationType"`
	Status          Status              `gorm:"size:16;not null;index" json:"status"`
	MoveInDate      *time.Time          `json:"moveInDate"`
	RentalDuration  int                 `gorm:"not null;default:0" json:"rentalDuration"`
	ProposedRent    decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"proposedRent"`
	TotalRent       decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"totalRent"`
	Inclusions      JSON                `json:"inclusions"`
	OccupancyType   OccupancyType       `gorm:"size:16;not null" json:"occupancyType"`
	Message         *string             `gorm:"type:text" json:"message"`
	SubmittedAt     *time.Time          `json:"submittedAt"`
	CreatedAt       time.Time           `gorm:"index:idx_applications_user_created,priority:2" json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`

	Property *Property `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Unit     *Unit     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

// GetUserID returns the owner of the application
func (a *Application) GetUserID() string {
	return a.UserID
}

// IsDraft reports whether the application was never submitted
func (a *Application) IsDraft() bool {
	return a.SubmittedAt == nil
}

// ErrSnapshotImmutable is returned when anything tries to update a stored snapshot
var ErrSnapshotImmutable = errors.New("application snapshots are immutable")

// ApplicationSnapshot is a point-in-time copy of an application and the
// applicant's profile. Its payload is never updated.
type ApplicationSnapshot struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	ApplicationID string    `gorm:"size:36;not null;index:idx_snapshots_application_created,priority:1" json:"applicationId"`
	Snapshot      JSON      `gorm:"not null" json:"snapshot"`
	CreatedBy     string    `gorm:"size:64;not null" json:"createdBy"`
	Note          *string   `gorm:"type:text" json:"note"`
	CreatedAt     time.Time `gorm:"index:idx_snapshots_application_created,priority:2" json:"createdAt"`

	Application *Application `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
}

// BeforeUpdate rejects every update of a stored snapshot
func (s *ApplicationSnapshot) BeforeUpdate(tx *gorm.DB) error {
	return ErrSnapshotImmutable
}

// TableName overrides the table name for ApplicationSnapshot
func (ApplicationSnapshot) TableName() string {
	return "application_snapshots"
}

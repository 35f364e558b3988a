// Package api holds the JSON bodies exchanged over the HTTP surface. Handlers,
// services and the Go client share them so both ends agree on field names.
package api

import (
	"strings"
	"time"

	"github.com/localnerve/jam-build-rentals/internal/models"
	"github.com/localnerve/jam-build-rentals/internal/types"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of calendar dates such as moveInDate
const DateLayout = "2006-01-02"

// ApplicationForm is the full field set of an application as edited by the applicant.
// It is the body of the upsert endpoint and the value the autosave controller tracks.
type ApplicationForm struct {
	ApplicationID   string                 `json:"applicationId,omitempty"`
	PropertyID      string                 `json:"propertyId"`
	UnitID          *string                `json:"unitId"`
	ApplicationType models.ApplicationType `json:"applicationType"`
	MoveInDate      string                 `json:"moveInDate"`
	RentalDuration  types.FlexInt          `json:"rentalDuration"`
	ProposedRent    decimal.NullDecimal    `json:"proposedRent"`
	TotalRent       decimal.Decimal        `json:"totalRent"`
	Inclusions      map[string]interface{} `json:"inclusions"`
	OccupancyType   models.OccupancyType   `json:"occupancyType"`
	Message         *string                `json:"message"`
}

// HasMoveInDate reports whether the one field required before anything is persisted is set
func (f ApplicationForm) HasMoveInDate() bool {
	return strings.TrimSpace(f.MoveInDate) != ""
}

// ParseMoveInDate accepts a calendar date or a full RFC 3339 timestamp
func (f ApplicationForm) ParseMoveInDate() (*time.Time, error) {
	value := strings.TrimSpace(f.MoveInDate)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(DateLayout, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}

// ApplicationIDRequest is the body of submit and withdraw
type ApplicationIDRequest struct {
	ApplicationID string `json:"applicationId"`
}

// SnapshotRequest is the body of the snapshot endpoint
type SnapshotRequest struct {
	ApplicationID string  `json:"applicationId"`
	Note          *string `json:"note"`
}

// StatusRequest is the body of the admin status endpoint
type StatusRequest struct {
	ApplicationID string `json:"applicationId"`
	Status        string `json:"status"`
}

// RoleRequest is the body of the role management endpoint
type RoleRequest struct {
	Role string `json:"role"`
}

// CredentialsRequest is the body of login and signup
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is returned by login and signup
type LoginResult struct {
	AccessToken string              `json:"accessToken"`
	User        *models.SessionUser `json:"user"`
}

// DocumentUploadRequest asks for an upload URL for one applicant document
type DocumentUploadRequest struct {
	Kind        string `json:"kind"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

// DocumentUpload is a presigned upload target
type DocumentUpload struct {
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// PropertyFilter narrows the public property listing
type PropertyFilter struct {
	City        string              `query:"city"`
	MinBedrooms int                 `query:"minBedrooms"`
	MaxRent     decimal.NullDecimal `query:"-"`
	Limit       int                 `query:"limit"`
	Offset      int                 `query:"offset"`
}

// PropertyInput creates a property
type PropertyInput struct {
	Title         string          `json:"title"`
	Description   *string         `json:"description"`
	Address       string          `json:"address"`
	City          string          `json:"city"`
	Postcode      string          `json:"postcode"`
	PropertyType  string          `json:"propertyType"`
	Bedrooms      types.FlexInt   `json:"bedrooms"`
	Bathrooms     types.FlexInt   `json:"bathrooms"`
	BaseRent      decimal.Decimal `json:"baseRent"`
	AvailableFrom string          `json:"availableFrom"`
	Published     bool            `json:"published"`
}

// UnitInput adds a unit to a property
type UnitInput struct {
	Name          string               `json:"name"`
	Rent          decimal.Decimal      `json:"rent"`
	OccupancyType models.OccupancyType `json:"occupancyType"`
	Available     *bool                `json:"available"`
}

// LikeState is the result of liking or unliking a property
type LikeState struct {
	PropertyID string `json:"propertyId"`
	Liked      bool   `json:"liked"`
	Likes      int64  `json:"likes"`
}

// Envelope wraps every successful application response
type Envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

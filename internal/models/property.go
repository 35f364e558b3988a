package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Property is a listed building or house
type Property struct {
	ID            string          `gorm:"primaryKey;size:36" json:"id"`
	OwnerID       string          `gorm:"size:64;not null;index" json:"ownerId"`
	Title         string          `gorm:"size:255;not null" json:"title"`
	Description   *string         `gorm:"type:text" json:"description"`
	Address       string          `gorm:"size:512;not null" json:"address"`
	City          string          `gorm:"size:128;not null;index" json:"city"`
	Postcode      string          `gorm:"size:32" json:"postcode"`
	PropertyType  string          `gorm:"size:32;not null" json:"propertyType"`
	Bedrooms      int             `gorm:"not null;default:0" json:"bedrooms"`
	Bathrooms     int             `gorm:"not null;default:0" json:"bathrooms"`
	BaseRent      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"baseRent"`
	AvailableFrom *time.Time      `json:"availableFrom"`
	Published     bool            `gorm:"not null;default:false;index" json:"published"`
	Units         []Unit          `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"units,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// GetUserID returns the landlord that owns the property
func (p *Property) GetUserID() string {
	return p.OwnerID
}

// Unit is a rentable room or flat inside a property
type Unit struct {
	ID            string          `gorm:"primaryKey;size:36" json:"id"`
	PropertyID    string          `gorm:"size:36;not null;index" json:"propertyId"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	Rent          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"rent"`
	OccupancyType OccupancyType   `gorm:"size:16;not null" json:"occupancyType"`
	Available     bool            `gorm:"not null;default:true" json:"available"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// PropertyLike records that a user saved a property
type PropertyLike struct {
	UserID     string    `gorm:"primaryKey;size:64" json:"userId"`
	PropertyID string    `gorm:"primaryKey;size:36" json:"propertyId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// snapshot.go
//
// Rental marketplace backend for the jam-build stack
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of jam-build-rentals.
// jam-build-rentals is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// jam-build-rentals is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with jam-build-rentals.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package workflow

import (
	"fmt"
	"time"

	"github.com/localnerve/jam-build-rentals/internal/models"
	"github.com/shopspring/decimal"
)

// now is replaced in tests
var now = time.Now

// Document is the frozen payload of an ApplicationSnapshot. Every field is always
// present; absent source values become zero, null or an empty object so the
// document can be read without the rows it was built from.
type Document struct {
	SubmittedAt time.Time                     `json:"submittedAt"`
	Lease       LeaseTerms                    `json:"lease"`
	Profile     ProfileSection                `json:"profile"`
	Finance     FinanceSection                `json:"finance"`
	Rental      RentalSection                 `json:"rental"`
	Documents   map[string]models.DocumentRef `json:"documents"`
}

type LeaseTerms struct {
	ApplicationID   string                 `json:"applicationId"`
	PropertyID      string                 `json:"propertyId"`
	UnitID          *string                `json:"unitId"`
	ApplicationType models.ApplicationType `json:"applicationType"`
	Status          models.Status          `json:"status"`
	MoveInDate      *time.Time             `json:"moveInDate"`
	RentalDuration  int                    `json:"rentalDuration"`
	ProposedRent    decimal.NullDecimal    `json:"proposedRent"`
	TotalRent       decimal.Decimal        `json:"totalRent"`
	Inclusions      map[string]interface{} `json:"inclusions"`
	OccupancyType   models.OccupancyType   `json:"occupancyType"`
	Message         *string                `json:"message"`
}

type ProfileSection struct {
	UserID string      `json:"userId"`
	Email  string      `json:"email"`
	Name   *string     `json:"name"`
	Phone  *string     `json:"phone"`
	Image  *string     `json:"image"`
	Role   models.Role `json:"role"`
}

type FinanceSection struct {
	EmploymentStatus *string             `json:"employmentStatus"`
	Employer         *string             `json:"employer"`
	JobTitle         *string             `json:"jobTitle"`
	AnnualIncome     decimal.NullDecimal `json:"annualIncome"`
	HasGuarantor     *bool               `json:"hasGuarantor"`
}

type RentalSection struct {
	CurrentAddress  *string             `json:"currentAddress"`
	CurrentRent     decimal.NullDecimal `json:"currentRent"`
	YearsAtAddress  *int                `json:"yearsAtAddress"`
	ReasonForMoving *string             `json:"reasonForMoving"`
	HasPets         *bool               `json:"hasPets"`
	IsSmoker        *bool               `json:"isSmoker"`
	Occupants       *int                `json:"occupants"`
}

// BuildSnapshot freezes the applicant and the application into a Document.
// profile may be nil when the applicant never filled one in. Inputs are copied,
// never retained or modified.
func BuildSnapshot(applicant *models.SessionUser, profile *models.UserApplicationProfile, app *models.Application) (Document, error) {
	if applicant == nil || app == nil {
		return Document{}, fmt.Errorf("snapshot needs an applicant and an application")
	}

	inclusions := map[string]interface{}{}
	if err := app.Inclusions.Decode(&inclusions); err != nil {
		return Document{}, fmt.Errorf("decode inclusions: %w", err)
	}
	if inclusions == nil {
		inclusions = map[string]interface{}{}
	}

	documents, err := profile.DocumentMap()
	if err != nil {
		return Document{}, fmt.Errorf("decode documents: %w", err)
	}

	doc := Document{
		SubmittedAt: now().UTC(),
		Lease: LeaseTerms{
			ApplicationID:   app.ID,
			PropertyID:      app.PropertyID,
			UnitID:          clone(app.UnitID),
			ApplicationType: app.ApplicationType,
			Status:          app.Status,
			MoveInDate:      clone(app.MoveInDate),
			RentalDuration:  app.RentalDuration,
			ProposedRent:    app.ProposedRent,
			TotalRent:       app.TotalRent,
			Inclusions:      inclusions,
			OccupancyType:   app.OccupancyType,
			Message:         clone(app.Message),
		},
		Profile: ProfileSection{
			UserID: applicant.ID,
			Email:  applicant.Email,
			Name:   clone(applicant.Name),
			Phone:  clone(applicant.Phone),
			Image:  clone(applicant.Image),
			Role:   applicant.Role,
		},
		Documents: documents,
	}

	if profile != nil {
		doc.Finance = FinanceSection{
			EmploymentStatus: clone(profile.EmploymentStatus),
			Employer:         clone(profile.Employer),
			JobTitle:         clone(profile.JobTitle),
			AnnualIncome:     profile.AnnualIncome,
			HasGuarantor:     clone(profile.HasGuarantor),
		}
		doc.Rental = RentalSection{
			CurrentAddress:  clone(profile.CurrentAddress),
			CurrentRent:     profile.CurrentRent,
			YearsAtAddress:  clone(profile.YearsAtAddress),
			ReasonForMoving: clone(profile.ReasonForMoving),
			HasPets:         clone(profile.HasPets),
			IsSmoker:        clone(profile.IsSmoker),
			Occupants:       clone(profile.Occupants),
		}
	}

	return doc, nil
}

func clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

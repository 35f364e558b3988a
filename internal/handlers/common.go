// common.go
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

package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jam-build-rentals/internal/api"
	"github.com/localnerve/jam-build-rentals/internal/types"
	"github.com/shopspring/decimal"
)

// bindJSON decodes the request body into v. An empty body leaves v untouched.
func bindJSON(c *fiber.Ctx, v interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(v); err != nil {
		return types.InvalidInput("Invalid JSON body")
	}
	return nil
}

// parsePropertyFilter reads the listing filter from the query string,
// ignoring values that do not parse
func parsePropertyFilter(c *fiber.Ctx) api.PropertyFilter {
	filter := api.PropertyFilter{
		City:        strings.TrimSpace(c.Query("city")),
		MinBedrooms: c.QueryInt("minBedrooms", 0),
		Limit:       c.QueryInt("limit", 0),
		Offset:      c.QueryInt("offset", 0),
	}
	if raw := strings.TrimSpace(c.Query("maxRent")); raw != "" {
		if d, err := decimal.NewFromString(raw); err == nil {
			filter.MaxRent = decimal.NewNullDecimal(d)
		}
	}
	return filter
}

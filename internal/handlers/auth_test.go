// auth_test.go
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

package handlers_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jam-build-rentals/internal/api"
	"github.com/localnerve/jam-build-rentals/internal/middleware"
	"github.com/localnerve/jam-build-rentals/internal/models"
	"github.com/localnerve/jam-build-rentals/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type meResponse struct {
	User *models.SessionUser `json:"user"`
}

func TestMe(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/api/auth/me", nil, nil)
	testhelpers.AssertStatus(t, resp, fiber.StatusOK)
	var me meResponse
	testhelpers.ParseJSON(t, resp, &me)
	assert.Nil(t, me.User)

	resp = f.do(t, http.MethodGet, "/api/auth/me", nil, &http.Cookie{Name: middleware.SessionCookie, Value: "forged"})
	testhelpers.AssertStatus(t, resp, fiber.StatusOK)
	testhelpers.ParseJSON(t, resp, &me)
	assert.Nil(t, me.User)

	resp = f.do(t, http.MethodGet, "/api/auth/me", nil, f.landlord)
	testhelpers.AssertStatus(t, resp, fiber.StatusOK)
	testhelpers.ParseJSON(t, resp, &me)
	require.NotNil(t, me.User)
	assert.Equal(t, "landlord", me.User.ID)
	assert.Equal(t, models.RoleLandlord, me.User.Role)

	resp = f.do(t, http.MethodGet, "/api/auth/me", nil, f.alice)
	testhelpers.ParseJSON(t, resp, &me)
	require.NotNil(t, me.User)
	assert.Equal(t, models.RoleTenant, me.User.Role)
}

func TestLoginURL(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/api/auth/login-url?next=%2Flistings", nil, nil)
	testhelpers.AssertStatus(t, resp, fiber.StatusOK)
	var body struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	testhelpers.ParseJSON(t, resp, &body)

	u, err := url.Parse(body.Data.URL)
	require.NoError(t, err)
	assert.Equal(t, "authorizer.test:8080", u.Host)
	assert.Equal(t, "/app", u.Path)
	assert.Equal(t, "http://localhost:3000/api/auth/callback?next=%2Flistings", u.Query().Get("redirect_uri"))
}

func TestCallback(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		next     string
		location string
	}{
		{"%2Fapplications%2Fnew", "/applications/new"},
		{"https%3A%2F%2Fevil.example.com", "/"},
		{"%2F%2Fevil.example.com", "/"},
		{"", "/"},
	}
	for _, tt := range tests {
		resp := f.do(t, http.MethodGet, "/api/auth/callback?next="+tt.next, nil, f.bob)
		testhelpers.AssertStatus(t, resp, fiber.StatusFound)
		assert.Equal(t, tt.location, resp.Header.Get(fiber.HeaderLocation), tt.next)
	}

	var account models.User
	require.NoError(t, f.db.First(&account, "id = ?", "bob").Error)
	assert.Equal(t, "bob@example.com", account.Email)

	var role models.UserRole
	require.NoError(t, f.db.First(&role, "user_id = ?", "bob").Error)
	assert.Equal(t, models.RoleTenant, role.Role)
}

func TestSignUpAndLogin(t *testing.T) {
	f := newFixture(t)
	password := testhelpers.GeneratePassword()
	creds := map[string]string{"email": "carol@example.com", "password": password}

	resp := f.do(t, http.MethodPost, "/api/auth/login", creds, nil)
	testhelpers.AssertStatus(t, resp, fiber.StatusUnauthorized)

	resp = f.do(t, http.MethodPost, "/api/auth/signup", creds, nil)
	testhelpers.AssertStatus(t, resp, fiber.StatusOK)
	var result struct {
		Data api.LoginResult `json:"data"`
	}
	testhelpers.ParseJSON(t, resp, &result)
	assert.Equal(t, "token-carol@example.com", result.Data.AccessToken)
	require.NotNil(t, result.Data.User)
	assert.Equal(t, models.RoleTenant, result.Data.User.Role)

	resp = f.do(t, http.MethodPost, "/api/auth/signup", creds, nil)
	testhelpers.AssertStatus(t, resp, fiber.StatusBadRequest)

	resp = f.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "carol@example.com", "password": "wrong"}, nil)
	testhelpers.AssertStatus(t, resp, fiber.StatusUnauthorized)

	resp = f.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "carol@example.com"}, nil)
	testhelpers.AssertStatus(t, resp, fiber.StatusBadRequest)

	resp = f.do(t, http.MethodPost, "/api/auth/login", creds, nil)
	testhelpers.AssertStatus(t, resp, fiber.StatusOK)
	testhelpers.ParseJSON(t, resp, &result)

	// The issued token is a live session
	session := &http.Cookie{Name: middleware.SessionCookie, Value: result.Data.AccessToken}
	resp = f.do(t, http.MethodGet, "/api/auth/me", nil, session)
	var me meResponse
	testhelpers.ParseJSON(t, resp, &me)
	require.NotNil(t, me.User)
	assert.Equal(t, "user-carol@example.com", me.User.ID)
}

// client.go
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

// Package client is a Go client for the rentals HTTP API. The autosave
// controller and the admin CLI talk to the service through it.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jam-build-rentals/internal/api"
	"github.com/localnerve/jam-build-rentals/internal/middleware"
	"github.com/localnerve/jam-build-rentals/internal/models"
	"github.com/localnerve/jam-build-rentals/internal/utils"
)

// DefaultTimeout bounds a request when the context carries no deadline
const DefaultTimeout = 10 * time.Second

// Error is a non-2xx response from the service
type Error struct {
	Status  int
	Message string
	Type    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("rentals api: %d %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status of an *Error, or 0 for any other error
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Client calls the rentals API as one user
type Client struct {
	BaseURL string
	Session string
	Token   string
	Timeout time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithSession authenticates with the provider session cookie
func WithSession(cookie string) Option {
	return func(c *Client) { c.Session = cookie }
}

// WithToken authenticates with a bearer access token
func WithToken(token string) Option {
	return func(c *Client) { c.Token = token }
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.Timeout = d }
}

// New creates a Client for the service at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{BaseURL: strings.TrimSuffix(baseURL, "/"), Timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) agent(ctx context.Context, method, path string, body interface{}) *fiber.Agent {
	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.BaseURL + path)

	a.Set("X-Api-Version", middleware.APIVersion)
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if c.Session != "" {
		a.Cookie(middleware.SessionCookie, c.Session)
	}
	if c.Token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+c.Token)
	}

	timeout := c.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout || timeout <= 0 {
			timeout = remaining
		}
	}
	if timeout > 0 {
		a.Timeout(timeout)
	}

	if body != nil {
		a.JSON(body)
	}
	return a
}

// do sends one request and decodes a success body into out
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a := c.agent(ctx, method, path, body)
	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return fmt.Errorf("rentals api: %w", err)
	}
	code, payload, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("rentals api: %s %s: %w", method, path, errors.Join(errs...))
	}

	if code < 200 || code >= 300 {
		var failure utils.ErrorResponseStruct
		if err := json.Unmarshal(payload, &failure); err != nil || failure.Error == "" {
			return &Error{Status: code, Message: strings.TrimSpace(string(payload))}
		}
		return &Error{Status: code, Message: failure.Error, Type: failure.Type}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("rentals api: decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) data(ctx context.Context, method, path string, body, out interface{}) error {
	env := api.Envelope[json.RawMessage]{}
	if err := c.do(ctx, method, path, body, &env); err != nil {
		return err
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("rentals api: decode %s %s: %w", method, path, err)
	}
	return nil
}

// Me returns the signed-in user, or nil when the client is anonymous
func (c *Client) Me(ctx context.Context) (*models.SessionUser, error) {
	var body struct {
		User *models.SessionUser `json:"user"`
	}
	if err := c.do(ctx, fiber.MethodGet, "/api/auth/me", nil, &body); err != nil {
		return nil, err
	}
	return body.User, nil
}

// UpsertApplication creates or updates a draft application
func (c *Client) UpsertApplication(ctx context.Context, form api.ApplicationForm) (*models.Application, error) {
	var app models.Application
	if err := c.data(ctx, fiber.MethodPost, "/api/application", form, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// Application returns one application
func (c *Client) Application(ctx context.Context, id string) (*models.Application, error) {
	var app models.Application
	if err := c.data(ctx, fiber.MethodGet, "/api/application/"+url.PathEscape(id), nil, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// Applications lists the signed-in user's applications, newest first
func (c *Client) Applications(ctx context.Context) ([]models.Application, error) {
	apps := []models.Application{}
	if err := c.data(ctx, fiber.MethodGet, "/api/applications", nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// Submit submits an application
func (c *Client) Submit(ctx context.Context, id string) (*models.Application, error) {
	var app models.Application
	if err := c.data(ctx, fiber.MethodPost, "/api/application/submit", api.ApplicationIDRequest{ApplicationID: id}, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// Withdraw withdraws a submitted application
func (c *Client) Withdraw(ctx context.Context, id string) (*models.Application, error) {
	var app models.Application
	if err := c.data(ctx, fiber.MethodPost, "/api/application/withdraw", api.ApplicationIDRequest{ApplicationID: id}, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// UpdateStatus sets any status on an application. Admin only.
func (c *Client) UpdateStatus(ctx context.Context, id string, status models.Status) (*models.Application, error) {
	var app models.Application
	req := api.StatusRequest{ApplicationID: id, Status: string(status)}
	if err := c.data(ctx, fiber.MethodPatch, "/api/application/status", req, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// CreateSnapshot freezes the application and the user's profile
func (c *Client) CreateSnapshot(ctx context.Context, id string, note *string) (*models.ApplicationSnapshot, error) {
	var snapshot models.ApplicationSnapshot
	if err := c.data(ctx, fiber.MethodPost, "/api/application/snapshot", api.SnapshotRequest{ApplicationID: id, Note: note}, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// SetLiked likes or unlikes a property
func (c *Client) SetLiked(ctx context.Context, propertyID string, liked bool) (*api.LikeState, error) {
	method := fiber.MethodPost
	if !liked {
		method = fiber.MethodDelete
	}
	var state api.LikeState
	if err := c.data(ctx, method, "/api/properties/"+url.PathEscape(propertyID)+"/like", nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// autosave.go
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

// Package autosave keeps an in-progress application form synced to the store.
// Changes are debounced, identical values are never written twice and failures
// never reach the user.
package autosave

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/localnerve/jam-build-rentals/internal/api"
	"github.com/localnerve/jam-build-rentals/internal/models"
)

const (
	// DefaultDelay is the quiet period after the last change before a save
	DefaultDelay = 1000 * time.Millisecond
	// DefaultSaveTimeout bounds one background save
	DefaultSaveTimeout = 10 * time.Second
)

// ErrIncomplete is returned by Flush when the form lacks a move-in date
var ErrIncomplete = errors.New("autosave: move-in date is required before saving")

// Saver persists a form. *client.Client satisfies it.
type Saver interface {
	UpsertApplication(ctx context.Context, form api.ApplicationForm) (*models.Application, error)
}

// Options configures a Controller
type Options struct {
	Delay       time.Duration
	SaveTimeout time.Duration
	Log         *slog.Logger
	// ApplicationID resumes editing an existing application
	ApplicationID string
	// OnSaved is called after every successful save
	OnSaved func(app *models.Application)
}

// Controller debounces form changes into upserts. At most one save runs at a time.
type Controller struct {
	saver   Saver
	delay   time.Duration
	timeout time.Duration
	log     *slog.Logger
	onSaved func(app *models.Application)

	mu        sync.Mutex
	idle      *sync.Cond
	timer     *time.Timer
	current   api.ApplicationForm
	hasValue  bool
	lastSaved *api.ApplicationForm
	appID     string
	disabled  bool
	inFlight  bool
	rearm     bool
	closed    bool
}

// New creates a Controller that saves through saver
func New(saver Saver, opts Options) *Controller {
	c := &Controller{
		saver:   saver,
		delay:   opts.Delay,
		timeout: opts.SaveTimeout,
		log:     opts.Log,
		onSaved: opts.OnSaved,
		appID:   opts.ApplicationID,
	}
	if c.delay <= 0 {
		c.delay = DefaultDelay
	}
	if c.timeout <= 0 {
		c.timeout = DefaultSaveTimeout
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	c.idle = sync.NewCond(&c.mu)
	return c
}

// Update records the latest form value and restarts the debounce timer
func (c *Controller) Update(form api.ApplicationForm) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.current = form
	c.hasValue = true
	c.arm()
}

// arm starts or restarts the timer. Caller holds mu.
func (c *Controller) arm() {
	if c.timer == nil {
		c.timer = time.AfterFunc(c.delay, c.fire)
		return
	}
	c.timer.Reset(c.delay)
}

// SetDisabled pauses or resumes background saves, e.g. on a read-only review step
func (c *Controller) SetDisabled(disabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disabled = disabled
}

// ApplicationID returns the id of the application being edited, empty until the first save
func (c *Controller) ApplicationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.appID
}

// Saving reports whether a save is in flight
func (c *Controller) Saving() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

func (c *Controller) fire() {
	c.mu.Lock()
	if c.closed || c.disabled || !c.hasValue {
		c.mu.Unlock()
		return
	}
	if c.inFlight {
		c.rearm = true
		c.mu.Unlock()
		return
	}
	form, ok := c.pending()
	if !ok {
		c.mu.Unlock()
		return
	}
	c.inFlight = true
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	if err := c.save(ctx, form); err != nil {
		c.log.Warn("autosave failed", "application", form.ApplicationID, "error", err)
	}
}

// pending returns the form to save, or false when there is nothing worth
// saving. Caller holds mu.
func (c *Controller) pending() (api.ApplicationForm, bool) {
	form := c.current
	if strings.TrimSpace(form.MoveInDate) == "" {
		return form, false
	}
	if c.lastSaved == nil {
		if !hasRequiredField(form) {
			return form, false
		}
	} else if Equal(form, *c.lastSaved) {
		return form, false
	}
	if form.ApplicationID == "" {
		form.ApplicationID = c.appID
	}
	return form, true
}

// save runs one upsert and settles the in-flight flag. Caller set inFlight.
func (c *Controller) save(ctx context.Context, form api.ApplicationForm) error {
	app, err := c.saver.UpsertApplication(ctx, form)

	c.mu.Lock()
	c.inFlight = false
	if err == nil && app != nil {
		saved := form
		saved.Inclusions = maps.Clone(form.Inclusions)
		c.lastSaved = &saved
		c.appID = app.ID
	}
	if c.rearm {
		c.rearm = false
		if !c.closed {
			c.arm()
		}
	}
	onSaved := c.onSaved
	c.idle.Broadcast()
	c.mu.Unlock()

	if err != nil {
		return err
	}
	if app == nil {
		return nil
	}
	if onSaved != nil {
		onSaved(app)
	}
	c.log.Debug("autosaved application", "application", app.ID)
	return nil
}

// Flush saves the current form now, waiting out any save in flight. Unlike a
// background save it reports failure. Flush saves even while disabled.
func (c *Controller) Flush(ctx context.Context) error {
	c.mu.Lock()
	for c.inFlight {
		c.idle.Wait()
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.rearm = false
	if !c.hasValue {
		c.mu.Unlock()
		return nil
	}
	if strings.TrimSpace(c.current.MoveInDate) == "" {
		c.mu.Unlock()
		return ErrIncomplete
	}
	form, ok := c.pending()
	if !ok {
		c.mu.Unlock()
		return nil
	}
	c.inFlight = true
	c.mu.Unlock()

	return c.save(ctx, form)
}

// Close cancels the pending timer. A save already in flight completes.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.rearm = false
	if c.timer != nil {
		c.timer.Stop()
	}
}

// hasRequiredField is the change test for a form that has never been saved
func hasRequiredField(form api.ApplicationForm) bool {
	return strings.TrimSpace(form.PropertyID) != "" || form.HasMoveInDate()
}

var formComparer = cmp.Options{
	cmpopts.IgnoreFields(api.ApplicationForm{}, "ApplicationID"),
	cmpopts.EquateEmpty(),
}

// Equal reports whether two form values would save the same record
func Equal(a, b api.ApplicationForm) bool {
	return cmp.Equal(a, b, formComparer)
}

// Package registration drives the two-stage sign-up form: personal data
// first, then an address that is auto-filled from the postal code.
package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	addressmodels "simohu/internal/address/models"
	"simohu/internal/platform/logger"
	"simohu/internal/platform/metrics"
	usermodels "simohu/internal/user/models"
	"simohu/pkg/format"
)

const defaultLookupTimeout = 10 * time.Second

// Controller owns a registration State for the lifetime of one form. All
// mutations go through its methods; State returns copies.
//
// Postal-code lookups run in their own goroutine so edits stay responsive.
// Each dispatch takes the next sequence number, and a result is applied only
// if its number is still the latest; older results are dropped. Submit is
// refused while a lookup is outstanding or another submit is running.
type Controller struct {
	lookup  AddressLookup
	users   UserCreator
	policy  AutofillPolicy
	profile Profile
	timeout time.Duration
	now     func() time.Time
	logger  *slog.Logger
	metrics *metrics.Metrics

	onChange   func(State)
	onComplete func(*usermodels.CreateUserResponse)

	submitting *semaphore.Weighted
	baseCtx    context.Context
	cancelAll  context.CancelFunc
	inflight   sync.WaitGroup

	mu           sync.Mutex
	state        State
	lookupSeq    uint64
	lookupCode   string
	lookupCancel context.CancelFunc
	lastLookup   LookupOutcome
	looking      bool
	closed       bool
}

// LookupOutcome is how the most recent applicable postal-code lookup ended.
type LookupOutcome int

const (
	LookupNone LookupOutcome = iota
	LookupFound
	LookupNotFound
	LookupFailed
)

type Option func(c *Controller)

// WithAutofillPolicy selects how lookup results treat user edits.
func WithAutofillPolicy(p AutofillPolicy) Option {
	return func(c *Controller) {
		c.policy = p
	}
}

// WithProfile sets the portal constants sent with the new user.
func WithProfile(p Profile) Option {
	return func(c *Controller) {
		c.profile = p
	}
}

// WithLookupTimeout bounds each postal-code lookup.
func WithLookupTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.timeout = d
	}
}

// WithClock replaces time.Now for birth-date validation.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithOnChange registers a callback invoked with a snapshot after every state
// change. It may run on a lookup goroutine and must not call back into the
// Controller synchronously.
func WithOnChange(fn func(State)) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// WithOnComplete registers the effect run after a successful submit, such as
// leaving the screen.
func WithOnComplete(fn func(*usermodels.CreateUserResponse)) Option {
	return func(c *Controller) {
		c.onComplete = fn
	}
}

// New constructs a Controller at stage 1 with an empty form.
func New(lookup AddressLookup, users UserCreator, opts ...Option) (*Controller, error) {
	if lookup == nil {
		return nil, errors.New("address lookup is required")
	}
	if users == nil {
		return nil, errors.New("user creator is required")
	}
	c := &Controller{
		lookup:     lookup,
		users:      users,
		profile:    Profile{ProfileID: 1, PortalUserType: 1},
		timeout:    defaultLookupTimeout,
		now:        time.Now,
		logger:     logger.Discard(),
		submitting: semaphore.NewWeighted(1),
		state:      NewState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.baseCtx, c.cancelAll = context.WithCancel(context.Background())
	return c, nil
}

// State returns a snapshot of the form.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Stage returns the current stage.
func (c *Controller) Stage() Stage {
	return c.State().Stage
}

// Display returns the rendered value of f.
func (c *Controller) Display(f Field) string {
	return c.State().Display(f)
}

// Looking reports whether a postal-code lookup is outstanding.
func (c *Controller) Looking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.looking
}

// LastLookup reports the outcome of the latest lookup for the current postal
// code. It is LookupNone while a lookup is outstanding or after the code
// changed.
func (c *Controller) LastLookup() LookupOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastLookup
}

// SetField edits one field of the current stage. Fields of the other stage
// are rejected with ErrWrongStage, so stage 1 data cannot change while the
// address is being filled in. Editing the postal code may start a lookup.
func (c *Controller) SetField(f Field, value string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	stage := StageOf(f)
	if stage == 0 {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	if stage != c.state.Stage {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s belongs to the %s stage", ErrWrongStage, f, stage)
	}

	next, err := SetField(c.state, f, value)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = next
	if f == FieldPostalCode {
		c.postalCodeChangedLocked(next.Address.PostalCode)
	}
	snapshot := c.state
	c.mu.Unlock()

	c.notify(snapshot)
	return nil
}

// postalCodeChangedLocked supersedes any outstanding lookup when the code
// changes and dispatches a new one once it has exactly eight digits.
func (c *Controller) postalCodeChangedLocked(digits string) {
	if digits == c.lookupCode {
		return
	}
	c.invalidateLookupLocked()
	if len(digits) != format.CEPDigits {
		return
	}
	c.dispatchLookupLocked(digits)
}

func (c *Controller) invalidateLookupLocked() {
	c.lookupSeq++
	c.lookupCode = ""
	c.lastLookup = LookupNone
	c.looking = false
	if c.lookupCancel != nil {
		c.lookupCancel()
		c.lookupCancel = nil
	}
}

func (c *Controller) dispatchLookupLocked(digits string) {
	seq := c.lookupSeq
	ctx, cancel := context.WithTimeout(c.baseCtx, c.timeout)
	c.lookupCode = digits
	c.lookupCancel = cancel
	c.looking = true

	c.logger.Debug("postal code lookup dispatched", "postal_code", digits, "seq", seq)
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		defer cancel()
		address, err := c.lookup.Lookup(ctx, digits)
		c.resolveLookup(seq, digits, address, err)
	}()
}

func (c *Controller) resolveLookup(seq uint64, digits string, address *addressmodels.Address, err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.logger.Debug("postal code lookup resolved after close", "postal_code", digits, "seq", seq)
		return
	}
	if seq != c.lookupSeq {
		c.mu.Unlock()
		c.metrics.IncrementStaleLookups()
		c.logger.Debug("stale postal code lookup discarded", "postal_code", digits, "seq", seq)
		return
	}
	c.looking = false
	c.lookupCancel = nil

	switch {
	case err != nil:
		// Retyping the same code must retry.
		c.lookupCode = ""
		c.lastLookup = LookupFailed
		c.logger.Warn("postal code lookup failed", "postal_code", digits, "error", err)
	case address == nil:
		c.lastLookup = LookupNotFound
		c.logger.Info("postal code not found", "postal_code", digits)
	default:
		c.lastLookup = LookupFound
		c.state = ApplyLookup(c.state, address, c.policy)
	}
	snapshot := c.state
	c.mu.Unlock()

	c.notify(snapshot)
}

// Advance validates stage 1 and moves to stage 2. On failure the form stays
// in stage 1 and the returned error wraps validate.Errors listing every
// failing field.
func (c *Controller) Advance() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state.Stage != StagePersonal {
		c.mu.Unlock()
		return ErrWrongStage
	}
	if errs := ValidatePersonal(c.state.Personal, c.now()); len(errs) > 0 {
		c.mu.Unlock()
		return errs.Err()
	}
	c.state.Stage = StageAddress
	snapshot := c.state
	c.mu.Unlock()

	c.notify(snapshot)
	return nil
}

// Back returns to stage 1 keeping everything entered so far.
func (c *Controller) Back() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state.Stage != StageAddress {
		c.mu.Unlock()
		return ErrWrongStage
	}
	c.state.Stage = StagePersonal
	snapshot := c.state
	c.mu.Unlock()

	c.notify(snapshot)
	return nil
}

// Submit validates stage 2 and sends the combined payload exactly once. On
// success the form is discarded, the controller closes and the completion
// effect runs. On failure the form stays in stage 2 untouched and the
// collaborator's error is returned as is.
func (c *Controller) Submit(ctx context.Context) (*usermodels.CreateUserResponse, error) {
	if !c.submitting.TryAcquire(1) {
		return nil, ErrSubmitInProgress
	}
	defer c.submitting.Release(1)

	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return nil, ErrClosed
	case c.state.Stage != StageAddress:
		c.mu.Unlock()
		return nil, ErrWrongStage
	case c.looking:
		c.mu.Unlock()
		return nil, ErrLookupInProgress
	}
	if errs := ValidateAddress(c.state.Address); len(errs) > 0 {
		c.mu.Unlock()
		return nil, errs.Err()
	}
	req := BuildCreateUserRequest(c.state, c.profile)
	c.mu.Unlock()

	resp, err := c.users.Create(ctx, req)
	if err != nil {
		c.metrics.IncrementSubmits("failure")
		c.logger.InfoContext(ctx, "registration submit failed", "error", err)
		return nil, err
	}
	c.metrics.IncrementSubmits("success")

	c.mu.Lock()
	c.state = NewState()
	c.invalidateLookupLocked()
	c.closed = true
	c.mu.Unlock()
	c.cancelAll()

	if c.onComplete != nil {
		c.onComplete(resp)
	}
	return resp, nil
}

// Close abandons the form. Outstanding lookups are cancelled and any result
// that still arrives is ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.invalidateLookupLocked()
	c.mu.Unlock()
	c.cancelAll()
}

// Closed reports whether the form was submitted or abandoned.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Wait blocks until every dispatched lookup goroutine has returned.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

func (c *Controller) notify(s State) {
	if c.onChange != nil {
		c.onChange(s)
	}
}

// Package mutation coordinates listing writes: per-operation lifecycle
// state, the cache invalidation each write owes, and the failure taxonomy
// the UI renders.
package mutation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/time/rate"

	"github.com/malcha/dagu-client/internal/core/domain"
	"github.com/malcha/dagu-client/internal/core/ports/driven"
	"github.com/malcha/dagu-client/internal/core/ports/driving"
)

// Ensure Coordinator implements Mutations
var _ driving.Mutations = (*Coordinator)(nil)

// Invalidator flags cache entries stale. Satisfied by cache.Cache.
type Invalidator interface {
	Invalidate(match func(key string) bool)
}

// Config holds coordinator tuning knobs.
type Config struct {
	// ClickLimit caps click tracking; bursts beyond it are dropped, never
	// queued. Zero means one click per second.
	ClickLimit rate.Limit
	ClickBurst int

	// OnChange, when non-nil, fires after every state transition.
	OnChange func(op driving.MutationOp, state driving.MutationState)

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig allows short click bursts while smoothing sustained
// clicking to one per second.
func DefaultConfig() Config {
	return Config{
		ClickLimit: rate.Limit(1),
		ClickBurst: 5,
	}
}

// Coordinator runs writes against the backend and keeps the query cache
// honest about them. Every successful write invalidates its declared key
// set BEFORE the success state is published, so a caller reacting to
// success and re-querying immediately cannot observe pre-mutation data.
type Coordinator struct {
	api     driven.MutationAPI
	inv     Invalidator
	cfg     Config
	logger  *slog.Logger
	clicks  *rate.Limiter
	mu      sync.Mutex
	states  map[driving.MutationOp]driving.MutationState
	pending map[driving.MutationOp]bool
}

// New creates a coordinator over a mutation API and a cache.
func New(api driven.MutationAPI, inv Invalidator, cfg Config) *Coordinator {
	def := DefaultConfig()
	if cfg.ClickLimit <= 0 {
		cfg.ClickLimit = def.ClickLimit
	}
	if cfg.ClickBurst <= 0 {
		cfg.ClickBurst = def.ClickBurst
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		api:     api,
		inv:     inv,
		cfg:     cfg,
		logger:  logger,
		clicks:  rate.NewLimiter(cfg.ClickLimit, cfg.ClickBurst),
		states:  make(map[driving.MutationOp]driving.MutationState),
		pending: make(map[driving.MutationOp]bool),
	}
}

// State returns the lifecycle state of an operation. Operations never run
// report as idle.
func (c *Coordinator) State(op driving.MutationOp) driving.MutationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.states[op]
	if !ok {
		return driving.MutationState{Status: driving.MutationIdle}
	}
	return state
}

func (c *Coordinator) setState(op driving.MutationOp, state driving.MutationState) {
	c.mu.Lock()
	c.states[op] = state
	c.pending[op] = state.Status == driving.MutationPending
	c.mu.Unlock()
	if c.cfg.OnChange != nil {
		c.cfg.OnChange(op, state)
	}
}

// begin moves an operation to pending, refusing while one is in flight.
func (c *Coordinator) begin(op driving.MutationOp) error {
	c.mu.Lock()
	if c.pending[op] {
		c.mu.Unlock()
		return fmt.Errorf("%s: operation already pending", op)
	}
	state := driving.MutationState{Status: driving.MutationPending}
	c.states[op] = state
	c.pending[op] = true
	c.mu.Unlock()
	if c.cfg.OnChange != nil {
		c.cfg.OnChange(op, state)
	}
	return nil
}

func (c *Coordinator) fail(op driving.MutationOp, err error) {
	c.setState(op, driving.MutationState{
		Status:  driving.MutationFailed,
		Failure: domain.ClassifyFailure(err),
		Detail:  err.Error(),
	})
}

// settle finishes an operation: on success the declared invalidations run
// first, then the succeeded state is published.
func (c *Coordinator) settle(op driving.MutationOp, invalidate func(string) bool, err error) {
	if err != nil {
		c.fail(op, err)
		return
	}
	c.inv.Invalidate(invalidate)
	c.setState(op, driving.MutationState{Status: driving.MutationSucceeded})
}

// everyView matches both search results and listing views; a write that
// changes listing data can surface in either.
func everyView(key string) bool {
	return domain.IsSearchKey(key) || domain.IsListingKey(key)
}

// CreateItem submits a new listing.
func (c *Coordinator) CreateItem(ctx context.Context, input domain.CreateItemInput) (*domain.Item, error) {
	if err := c.validateCreate(input); err != nil {
		c.fail(driving.OpCreateItem, err)
		return nil, err
	}
	if err := c.begin(driving.OpCreateItem); err != nil {
		return nil, err
	}
	item, err := c.api.CreateItem(ctx, input)
	c.settle(driving.OpCreateItem, everyView, err)
	if err != nil {
		return nil, err
	}
	c.logger.Info("listing created", "id", item.ID, "source", item.Source)
	return item, nil
}

func (c *Coordinator) validateCreate(input domain.CreateItemInput) error {
	if input.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if input.Link == "" {
		return fmt.Errorf("%w: link is required", domain.ErrInvalidInput)
	}
	if !domain.IsAllowedLink(input.Link) {
		return fmt.Errorf("%w: link host is not allowed", domain.ErrInvalidInput)
	}
	return domain.ValidatePrice(input.Price)
}

// TrackClick records a click on a listing. It is fire-and-forget: the
// caller gets no result, failures are logged and dropped, and sustained
// bursts are shed by the rate limiter. A recorded click refreshes listing
// views only; search results do not rank by clicks.
func (c *Coordinator) TrackClick(ctx context.Context, itemID string) {
	if itemID == "" {
		return
	}
	if !c.clicks.Allow() {
		c.logger.Debug("click dropped by rate limit", "id", itemID)
		return
	}
	if err := c.api.TrackClick(ctx, itemID); err != nil {
		c.logger.Warn("click tracking failed", "id", itemID, "error", err)
		return
	}
	c.inv.Invalidate(domain.IsListingKey)
}

// ExtendItem pushes out a listing's expiry.
func (c *Coordinator) ExtendItem(ctx context.Context, itemID string) (*domain.Item, error) {
	if err := c.begin(driving.OpExtendItem); err != nil {
		return nil, err
	}
	item, err := c.api.ExtendItem(ctx, itemID)
	c.settle(driving.OpExtendItem, everyView, err)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ReportItem files a report against a listing. A report can tip the
// listing into review or deletion on the backend; the invalidation that
// follows makes the next fetch reflect that.
func (c *Coordinator) ReportItem(ctx context.Context, itemID string, input domain.ReportInput) (*domain.ReportResult, error) {
	if !input.Reason.Valid() {
		err := fmt.Errorf("%w: unknown report reason %q", domain.ErrInvalidInput, input.Reason)
		c.fail(driving.OpReportItem, err)
		return nil, err
	}
	if err := c.begin(driving.OpReportItem); err != nil {
		return nil, err
	}
	result, err := c.api.ReportItem(ctx, itemID, input)
	c.settle(driving.OpReportItem, everyView, err)
	if err != nil {
		return nil, err
	}
	if result.IsDeleted || result.IsUnderReview {
		c.logger.Info("reported listing flagged",
			"id", itemID, "under_review", result.IsUnderReview, "deleted", result.IsDeleted)
	}
	return result, nil
}

// UpdatePrice sets a new price on an owned listing.
func (c *Coordinator) UpdatePrice(ctx context.Context, itemID string, price int) (*domain.Item, error) {
	if err := domain.ValidatePrice(price); err != nil {
		c.fail(driving.OpUpdatePrice, err)
		return nil, err
	}
	if err := c.begin(driving.OpUpdatePrice); err != nil {
		return nil, err
	}
	item, err := c.api.UpdatePrice(ctx, itemID, price)
	c.settle(driving.OpUpdatePrice, everyView, err)
	if err != nil {
		return nil, err
	}
	return item, nil
}

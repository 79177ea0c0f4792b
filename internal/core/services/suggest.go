package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/malcha/dagu-client/internal/core/domain"
	"github.com/malcha/dagu-client/internal/core/ports/driven"
)

// SuggestConfig holds suggester tuning knobs.
type SuggestConfig struct {
	// Debounce is how long typing must pause before a lookup fires.
	Debounce time.Duration

	// Limit caps the number of suggestions per lookup.
	Limit int

	// LookupLimit caps backend lookups; keystrokes beyond it fall through
	// to the next pause. Zero means four lookups per second.
	LookupLimit rate.Limit
	LookupBurst int

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultSuggestConfig matches one lookup per typing pause.
func DefaultSuggestConfig() SuggestConfig {
	return SuggestConfig{
		Debounce:    300 * time.Millisecond,
		Limit:       10,
		LookupLimit: rate.Limit(4),
		LookupBurst: 4,
	}
}

// Suggester turns a keystroke stream into debounced catalog suggestions.
// Only the latest keystroke's lookup ever reaches the callback; earlier
// pending lookups are cancelled or their results dropped.
type Suggester struct {
	api     driven.SearchAPI
	cfg     SuggestConfig
	logger  *slog.Logger
	limiter *rate.Limiter

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
	text  string

	onSuggestions func(text string, suggestions []domain.Instrument)
}

// NewSuggester creates a suggester. onSuggestions receives the lookup
// results, or nil when the input empties.
func NewSuggester(api driven.SearchAPI, cfg SuggestConfig, onSuggestions func(text string, suggestions []domain.Instrument)) *Suggester {
	def := DefaultSuggestConfig()
	if cfg.Debounce <= 0 {
		cfg.Debounce = def.Debounce
	}
	if cfg.Limit <= 0 {
		cfg.Limit = def.Limit
	}
	if cfg.LookupLimit <= 0 {
		cfg.LookupLimit = def.LookupLimit
	}
	if cfg.LookupBurst <= 0 {
		cfg.LookupBurst = def.LookupBurst
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Suggester{
		api:           api,
		cfg:           cfg,
		logger:        cfg.Logger,
		limiter:       rate.NewLimiter(cfg.LookupLimit, cfg.LookupBurst),
		onSuggestions: onSuggestions,
	}
}

// Keystroke feeds the current input text. Each call restarts the
// debounce window; the lookup fires only after typing pauses.
func (s *Suggester) Keystroke(text string) {
	text = domain.NormalizeQuery(text)

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.text = text
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if text == "" {
		s.mu.Unlock()
		if s.onSuggestions != nil {
			s.onSuggestions("", nil)
		}
		return
	}
	s.timer = time.AfterFunc(s.cfg.Debounce, func() {
		s.lookup(gen, text)
	})
	s.mu.Unlock()
}

func (s *Suggester) lookup(gen uint64, text string) {
	if !s.current(gen) {
		return
	}
	if !s.limiter.Allow() {
		s.logger.Debug("suggestion lookup dropped by rate limit", "text", text)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	suggestions, err := s.api.Instruments(ctx, text, s.cfg.Limit)
	if err != nil {
		// Suggestions are decoration: failures never surface to the user.
		s.logger.Warn("suggestion lookup failed", "text", text, "error", err)
		return
	}
	if !s.current(gen) {
		return
	}
	if s.onSuggestions != nil {
		s.onSuggestions(text, suggestions)
	}
}

func (s *Suggester) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.gen
}

// Close cancels any pending lookup.
func (s *Suggester) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

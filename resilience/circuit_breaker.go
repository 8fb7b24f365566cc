package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State is the position of a circuit breaker.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

var stateNames = [...]string{StateClosed: "closed", StateOpen: "open", StateHalfOpen: "half-open"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// ErrCircuitOpen is returned, without running the call, while the breaker
// rejects traffic.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig configures a circuit breaker.
type CircuitBreakerConfig struct {
	Name             string        `yaml:"name" mapstructure:"name"`
	MaxFailures      int           `yaml:"max_failures" mapstructure:"max_failures"`
	OpenTimeout      time.Duration `yaml:"open_timeout" mapstructure:"open_timeout"`
	HalfOpenMaxCalls int           `yaml:"half_open_max_calls" mapstructure:"half_open_max_calls"`

	// IsFailure decides whether an error counts against the breaker.
	// Defaults to DefaultRetryIf, so caller mistakes never trip it.
	IsFailure func(error) bool `yaml:"-" mapstructure:"-"`
	// OnStateChange runs under the breaker lock.
	OnStateChange func(name string, from, to State) `yaml:"-" mapstructure:"-"`
}

// DefaultCircuitBreakerConfig opens after 5 consecutive failures and probes
// once every 30 seconds.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{Name: name, MaxFailures: 5, OpenTimeout: 30 * time.Second, HalfOpenMaxCalls: 1}
}

// Counts is a snapshot of a breaker.
type Counts struct {
	State               State
	ConsecutiveFailures int
	HalfOpenCalls       int
	LastFailure         time.Time
}

// CircuitBreaker fails fast while a dependency keeps failing. After
// OpenTimeout it admits up to HalfOpenMaxCalls probes; as many successes
// close it again and any failure reopens it.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig
	now func() time.Time

	mu        sync.Mutex
	counts    Counts
	successes int
	reopenAt  time.Time
}

// NewCircuitBreaker creates a closed breaker. Zero limits take the defaults.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	def := DefaultCircuitBreakerConfig(cfg.Name)
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = def.MaxFailures
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = def.HalfOpenMaxCalls
	}
	if cfg.IsFailure == nil {
		cfg.IsFailure = DefaultRetryIf
	}
	return &CircuitBreaker{cfg: cfg, now: time.Now}
}

// Name returns the configured breaker name.
func (cb *CircuitBreaker) Name() string { return cb.cfg.Name }

// Execute runs fn when the breaker admits it and records the outcome.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.acquire(); err != nil {
		return err
	}
	err := fn()
	cb.release(err)
	return err
}

// ExecuteContext is Execute for context-aware calls. A call whose ctx is
// already done is rejected without touching the breaker.
func (cb *CircuitBreaker) ExecuteContext(ctx context.Context, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return cb.Execute(func() error { return fn(ctx) })
}

// State returns the current state.
func (cb *CircuitBreaker) State() State {
	return cb.Counts().State
}

// Counts returns a snapshot of the breaker.
func (cb *CircuitBreaker) Counts() Counts {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.tick()
	return cb.counts
}

// Reset closes the breaker and clears its counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.moveTo(StateClosed)
	cb.counts.ConsecutiveFailures = 0
}

func (cb *CircuitBreaker) acquire() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.tick()

	switch cb.counts.State {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		if cb.counts.HalfOpenCalls >= cb.cfg.HalfOpenMaxCalls {
			return ErrCircuitOpen
		}
		cb.counts.HalfOpenCalls++
	}
	return nil
}

func (cb *CircuitBreaker) release(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil || !cb.cfg.IsFailure(err) {
		if cb.counts.State == StateHalfOpen {
			cb.successes++
			if cb.successes >= cb.cfg.HalfOpenMaxCalls {
				cb.moveTo(StateClosed)
			}
			return
		}
		cb.counts.ConsecutiveFailures = 0
		return
	}

	cb.counts.ConsecutiveFailures++
	cb.counts.LastFailure = cb.now()
	if cb.counts.State == StateHalfOpen || cb.counts.ConsecutiveFailures >= cb.cfg.MaxFailures {
		cb.reopenAt = cb.counts.LastFailure.Add(cb.cfg.OpenTimeout)
		cb.moveTo(StateOpen)
	}
}

// tick moves an open breaker to half-open once its timeout has passed.
// Caller holds mu.
func (cb *CircuitBreaker) tick() {
	if cb.counts.State == StateOpen && !cb.now().Before(cb.reopenAt) {
		cb.moveTo(StateHalfOpen)
	}
}

// moveTo changes state and starts a fresh half-open window. Caller holds mu.
func (cb *CircuitBreaker) moveTo(to State) {
	from := cb.counts.State
	if from == to {
		return
	}
	cb.counts.State = to
	cb.counts.HalfOpenCalls = 0
	cb.successes = 0
	if to == StateClosed {
		cb.counts.ConsecutiveFailures = 0
	}
	if cb.cfg.OnStateChange != nil {
		cb.cfg.OnStateChange(cb.cfg.Name, from, to)
	}
}

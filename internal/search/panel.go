package search

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
)

const (
	DefaultDebounce = 500 * time.Millisecond

	// PatientViewDebounce is the window used by the patients view.
	PatientViewDebounce = 800 * time.Millisecond
)

// Filter keys, in the order they are reported.
const (
	KeyName       = "name"
	KeyIdentifier = "identifier"
	KeyBirthDate  = "birthdate"
	KeyGender     = "gender"
	KeyActive     = "active"
)

var filterKeys = []string{KeyName, KeyIdentifier, KeyBirthDate, KeyGender, KeyActive}

const valueAll = "all"

var (
	ErrClosed       = errors.New("search panel is closed")
	ErrUnknownField = errors.New("unknown filter field")
	ErrInvalidValue = errors.New("invalid filter value")
)

type State int

const (
	StateIdle State = iota
	StatePending
	StateSettled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateSettled:
		return "settled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Filters is the raw panel input. "" and "all" mean unset.
type Filters struct {
	Name       string `json:"name,omitempty"`
	Identifier string `json:"identifier,omitempty"`
	BirthDate  string `json:"birthdate,omitempty"`
	Gender     string `json:"gender,omitempty"`
	Active     string `json:"active,omitempty"`
}

func (f *Filters) field(key string) (*string, error) {
	switch key {
	case KeyName:
		return &f.Name, nil
	case KeyIdentifier:
		return &f.Identifier, nil
	case KeyBirthDate:
		return &f.BirthDate, nil
	case KeyGender:
		return &f.Gender, nil
	case KeyActive:
		return &f.Active, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
}

// ActiveFilter is one effective criterion.
type ActiveFilter struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Effective lists the effective criteria in key order.
func (f Filters) Effective() []ActiveFilter {
	out := make([]ActiveFilter, 0, len(filterKeys))
	for _, key := range filterKeys {
		v, _ := f.field(key)
		if *v != "" && *v != valueAll {
			out = append(out, ActiveFilter{Key: key, Value: *v})
		}
	}
	return out
}

// Params normalizes the filters into search params. ok is false when no
// criterion is set.
func (f Filters) Params() (params model.PatientSearchParams, ok bool) {
	for _, af := range f.Effective() {
		switch af.Key {
		case KeyName:
			params.Name = af.Value
		case KeyIdentifier:
			params.Identifier = af.Value
		case KeyBirthDate:
			params.BirthDate = af.Value
		case KeyGender:
			params.Gender = af.Value
		case KeyActive:
			active := af.Value == "true"
			params.Active = &active
		}
	}
	return params, !params.IsEmpty()
}

type Option func(*Panel)

func WithDebounce(d time.Duration) Option {
	return func(p *Panel) {
		if d > 0 {
			p.delay = d
		}
	}
}

func WithClock(c Clock) Option {
	return func(p *Panel) {
		if c != nil {
			p.clock = c
		}
	}
}

// WithInitial seeds the filters. Seeding never triggers an emission.
func WithInitial(f Filters) Option {
	return func(p *Panel) {
		p.filters = f
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(p *Panel) {
		p.logger = l
	}
}

// Panel debounces filter edits. After a quiet window it calls onSearch
// with the normalized criteria, or onClear when none remain.
//
// Callbacks run on the clock's goroutine. They must not call Close.
type Panel struct {
	mu      sync.Mutex
	filters Filters
	state   State
	timer   Timer
	gen     uint64
	closed  bool

	// held while a callback runs so Close can wait it out
	fireMu sync.Mutex

	delay    time.Duration
	clock    Clock
	onSearch func(model.PatientSearchParams)
	onClear  func()
	logger   zerolog.Logger
}

func NewPanel(onSearch func(model.PatientSearchParams), onClear func(), opts ...Option) *Panel {
	p := &Panel{
		state:    StateIdle,
		delay:    DefaultDebounce,
		clock:    RealClock(),
		onSearch: onSearch,
		onClear:  onClear,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Panel) SetName(v string) error {
	v = strings.TrimSpace(v)
	return p.mutate(func(f *Filters) error {
		f.Name = v
		return nil
	})
}

func (p *Panel) SetIdentifier(v string) error {
	return p.mutate(func(f *Filters) error {
		f.Identifier = v
		return nil
	})
}

func (p *Panel) SetBirthDate(v string) error {
	return p.mutate(func(f *Filters) error {
		f.BirthDate = v
		return nil
	})
}

func (p *Panel) SetGender(v string) error {
	return p.mutate(func(f *Filters) error {
		f.Gender = v
		return nil
	})
}

// SetActive accepts "all", "true", "false" or "".
func (p *Panel) SetActive(v string) error {
	switch v {
	case "", valueAll, "true", "false":
	default:
		return fmt.Errorf("%w: active=%q", ErrInvalidValue, v)
	}
	return p.mutate(func(f *Filters) error {
		f.Active = v
		return nil
	})
}

// Set updates one field by key.
func (p *Panel) Set(key, value string) error {
	switch key {
	case KeyName:
		return p.SetName(value)
	case KeyActive:
		return p.SetActive(value)
	}
	return p.mutate(func(f *Filters) error {
		field, err := f.field(key)
		if err != nil {
			return err
		}
		*field = value
		return nil
	})
}

// Remove unsets one field.
func (p *Panel) Remove(key string) error {
	return p.mutate(func(f *Filters) error {
		field, err := f.field(key)
		if err != nil {
			return err
		}
		*field = ""
		return nil
	})
}

// Clear unsets every field. The debounced emission is then onClear.
func (p *Panel) Clear() error {
	return p.mutate(func(f *Filters) error {
		*f = Filters{}
		return nil
	})
}

func (p *Panel) mutate(fn func(*Filters) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	next := p.filters
	if err := fn(&next); err != nil {
		return err
	}
	p.filters = next

	if p.timer != nil {
		p.timer.Stop()
	}
	p.gen++
	gen := p.gen
	p.state = StatePending
	p.timer = p.clock.AfterFunc(p.delay, func() { p.fire(gen) })

	return nil
}

func (p *Panel) fire(gen uint64) {
	p.fireMu.Lock()
	defer p.fireMu.Unlock()

	p.mu.Lock()
	if p.closed || gen != p.gen {
		p.mu.Unlock()
		return
	}
	p.state = StateSettled
	p.timer = nil
	params, ok := p.filters.Params()
	p.mu.Unlock()

	if ok {
		p.logger.Debug().Interface("params", params).Msg("debounced search")
		if p.onSearch != nil {
			p.onSearch(params)
		}
		return
	}

	p.logger.Debug().Msg("debounced clear")
	if p.onClear != nil {
		p.onClear()
	}
}

// Close cancels any pending emission. No callback runs after Close
// returns. Close is idempotent.
func (p *Panel) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		p.gen++
		if p.timer != nil {
			p.timer.Stop()
			p.timer = nil
		}
	}
	p.mu.Unlock()

	// wait for a callback that already passed the generation check
	p.fireMu.Lock()
	defer p.fireMu.Unlock()
}

func (p *Panel) Filters() Filters {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filters
}

// ActiveFilters is derived from the current filters on every call.
func (p *Panel) ActiveFilters() []ActiveFilter {
	return p.Filters().Effective()
}

func (p *Panel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

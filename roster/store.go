// Package roster holds the event's judge records and applies form edits to
// them.
package roster

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zalepa/judgefee/fee"
)

// ErrNoSuchJudge is returned for an index outside the roster.
var ErrNoSuchJudge = errors.New("no such judge")

// Seed chooses the starting values of an appended record.
type Seed string

const (
	SeedDefault        Seed = "default"
	SeedDuplicateFirst Seed = "duplicate-first"
)

// ParseSeed validates a configured append seed.
func ParseSeed(s string) (Seed, error) {
	switch Seed(s) {
	case SeedDefault, "":
		return SeedDefault, nil
	case SeedDuplicateFirst:
		return SeedDuplicateFirst, nil
	}
	return "", fmt.Errorf("unknown append seed %q (want %q or %q)", s, SeedDefault, SeedDuplicateFirst)
}

// Snapshot is an immutable view of the roster at one version.
type Snapshot struct {
	Version uint64
	Judges  []fee.JudgeInput
}

// Store owns the ordered judge records. Every mutation replaces the record
// sequence with a new one, so a Snapshot never changes after it is taken.
// Calls are serialized; each runs to completion before the next starts.
type Store struct {
	mu      sync.Mutex
	version uint64
	judges  []fee.JudgeInput

	opts   fee.Options
	lookup fee.RateLookup
	logger *zap.Logger
	newID  func() string
}

// Option configures a Store.
type Option func(*Store)

// WithLookup sets the fee table consulted when a region is edited.
func WithLookup(l fee.RateLookup) Option {
	return func(s *Store) { s.lookup = l }
}

// WithLogger sets the logger for edit diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithIDGenerator replaces the UUID generator, mainly for tests.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// New returns a store holding one default record.
func New(opts fee.Options, options ...Option) *Store {
	s := &Store{
		opts:   opts,
		logger: zap.NewNop(),
		newID:  uuid.NewString,
	}
	for _, o := range options {
		o(s)
	}
	s.judges = []fee.JudgeInput{fee.NewJudgeInput(s.newID())}
	return s
}

// Options returns the fee options the store was built with.
func (s *Store) Options() fee.Options { return s.opts }

// Snapshot returns a copy of the current records.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Version: s.version, Judges: slices.Clone(s.judges)}
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.judges)
}

// Edit parses raw for field and stores it on the judge at index. Numeric
// input that does not parse is stored as zero, and negative values are
// clamped to zero. Editing the region also copies the matching fee table
// rates onto the judge; an unmatched region leaves the rates alone.
func (s *Store) Edit(index int, field Field, raw string) error {
	if !field.valid() {
		return fmt.Errorf("edit judge %d: unknown field %v", index, field)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.judges) {
		return fmt.Errorf("edit judge %d: %w", index, ErrNoSuchJudge)
	}

	next := make([]fee.JudgeInput, len(s.judges))
	copy(next, s.judges)
	j := &next[index]

	spec := specs[field]
	switch spec.kind {
	case KindText:
		spec.setText(j, raw)
	case KindLevel:
		l, ok := fee.ParseLevel(raw)
		if !ok {
			s.logger.Debug("ignoring unknown level", zap.Int("judge", index), zap.String("level", raw))
			return nil
		}
		spec.setText(j, string(l))
	default:
		spec.setNum(j, parseValue(field, raw, s.opts.SignedAdjustments))
	}

	if field == FieldRegion {
		s.applyRegion(index, j)
	}

	s.judges = next
	s.version++
	return nil
}

func (s *Store) applyRegion(index int, j *fee.JudgeInput) {
	if !s.opts.RegionLookup || s.lookup == nil {
		return
	}
	row, ok := s.lookup.Lookup(j.Region)
	if !ok {
		s.logger.Debug("region not in fee table", zap.Int("judge", index), zap.String("region", j.Region))
		return
	}
	j.FIGFee = row.FIGFee
	j.NationalFee = row.NationalFee
	j.CompulsoryFee = row.CompulsoryFee
}

// Append adds a record at the end of the roster and returns its index.
func (s *Store) Append(seed Seed) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := fee.NewJudgeInput(s.newID())
	if seed == SeedDuplicateFirst && len(s.judges) > 0 {
		id := rec.ID
		rec = s.judges[0]
		rec.ID = id
	}

	next := make([]fee.JudgeInput, len(s.judges), len(s.judges)+1)
	copy(next, s.judges)
	s.judges = append(next, rec)
	s.version++
	return len(s.judges) - 1
}

// Results projects the current records into pay breakdowns.
func (s *Store) Results() (uint64, []fee.Result) {
	snap := s.Snapshot()
	return snap.Version, fee.Project(snap.Judges, s.lookup, s.opts)
}

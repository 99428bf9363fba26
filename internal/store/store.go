// Package store persists Monte Carlo baselines between runs in BadgerDB.
//
// Keys embed every calibration parameter, so a baseline is only reused for
// the exact (top_n, trials, seed, k) it was computed under:
//
//	baseline:n=5:t=100000:seed=42:k=12
//
// The stored value repeats the parameters; a value whose parameters do not
// match its key is treated as stale and ignored.
package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/handiism/ranksim/internal/scoring"
)

// ErrNotFound is returned by Get when no baseline is stored for a key.
var ErrNotFound = errors.New("baseline not found")

// ErrCorrupt is returned by Get when a stored value cannot be decoded.
var ErrCorrupt = errors.New("corrupt baseline")

const baselineKeyPrefix = "baseline:"

// Badger implements scoring.BaselineStore on a BadgerDB database.
type Badger struct {
	db  *badger.DB
	log *zerolog.Logger
}

var _ scoring.BaselineStore = (*Badger)(nil)

// Open opens or creates the database in dir.
func Open(dir string, log *zerolog.Logger) (*Badger, error) {
	return open(badger.DefaultOptions(dir), log)
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory(log *zerolog.Logger) (*Badger, error) {
	return open(badger.DefaultOptions("").WithInMemory(true), log)
}

func open(opts badger.Options, log *zerolog.Logger) (*Badger, error) {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	opts = opts.WithLogger(badgerLogger{log: log})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open baseline store: %w", err)
	}
	return &Badger{db: db, log: log}, nil
}

// Close closes the database.
func (s *Badger) Close() error {
	return s.db.Close()
}

// Key returns the storage key for a universe size and parameters.
func Key(k int, p scoring.Params) string {
	return fmt.Sprintf("%sn=%d:t=%d:seed=%d:k=%d", baselineKeyPrefix, p.TopN, p.Trials, p.Seed, k)
}

// Get returns the stored baseline for k and p as is, without the staleness
// check. Returns ErrNotFound when nothing is stored.
func (s *Badger) Get(k int, p scoring.Params) (scoring.Baseline, error) {
	var b scoring.Baseline

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(Key(k, p)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get baseline: %w", err)
		}

		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &b); err != nil {
				return fmt.Errorf("%w: %w", ErrCorrupt, err)
			}
			return nil
		})
	})
	if err != nil {
		return scoring.Baseline{}, err
	}
	return b, nil
}

// Load implements scoring.BaselineStore.
func (s *Badger) Load(k int, p scoring.Params) (scoring.Baseline, bool, error) {
	b, err := s.Get(k, p)
	if errors.Is(err, ErrNotFound) {
		return scoring.Baseline{}, false, nil
	}
	if errors.Is(err, ErrCorrupt) {
		s.log.Warn().Err(err).Str("key", Key(k, p)).Msg("Ignoring corrupt baseline")
		return scoring.Baseline{}, false, nil
	}
	if err != nil {
		return scoring.Baseline{}, false, err
	}

	if b.UniverseSize != k || b.Params != p {
		s.log.Warn().
			Str("key", Key(k, p)).
			Int("stored_k", b.UniverseSize).
			Int("stored_top_n", b.Params.TopN).
			Int("stored_trials", b.Params.Trials).
			Uint64("stored_seed", b.Params.Seed).
			Msg("Ignoring stale baseline")
		return scoring.Baseline{}, false, nil
	}

	s.log.Debug().Int("k", k).Float64("mean", b.Mean).Float64("std", b.Std).Msg("Loaded baseline")
	return b, true, nil
}

// Save implements scoring.BaselineStore.
func (s *Badger) Save(b scoring.Baseline) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal baseline: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(Key(b.UniverseSize, b.Params)), data)
	})
}

// put writes raw bytes under a key; tests use it to plant stale values.
func (s *Badger) put(key string, data []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// badgerLogger routes badger's logging into zerolog. Badger is chatty at
// info level, so info and debug go to debug.
type badgerLogger struct {
	log *zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.log.Error().Str("component", "badger").Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.log.Warn().Str("component", "badger").Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.log.Debug().Str("component", "badger").Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Debugf(format string, args ...any) {
	l.log.Debug().Str("component", "badger").Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

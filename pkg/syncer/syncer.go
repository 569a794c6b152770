package syncer

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/zksync-ledger/pkg/classifier"
	"github.com/zksync-ledger/pkg/db"
	"github.com/zksync-ledger/pkg/zksync"
)

const DefaultPageSize = 100

// Source pages through an account's transaction history.
type Source interface {
	History(ctx context.Context, address string, offset, limit int) ([]zksync.Transaction, error)
}

// Stats summarises one sync run.
type Stats struct {
	Processed   int // history entries seen
	Added       int // new ledger rows
	Stored      int // rows in the ledger after the run
	Duplicates  int
	Unsupported int
	Malformed   int
	Pages       int
}

type Syncer struct {
	source   Source
	ledger   db.Ledger
	wallet   string
	pageSize int
	logger   zerolog.Logger
}

type Option func(*Syncer)

func WithPageSize(n int) Option {
	return func(s *Syncer) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Syncer) { s.logger = l }
}

func New(source Source, ledger db.Ledger, wallet string, opts ...Option) *Syncer {
	s := &Syncer{
		source:   source,
		ledger:   ledger,
		wallet:   wallet,
		pageSize: DefaultPageSize,
		logger:   log.Logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run pulls the whole history for the wallet and appends every transaction
// not yet in the ledger. The ledger is persisted after each page, so an
// aborted run loses at most the page in flight. A fetch error aborts the run
// and is returned as a *FetchError; nothing of the failing page is written.
func (s *Syncer) Run(ctx context.Context) (Stats, error) {
	var st Stats

	existing, err := s.ledger.Load()
	if err != nil {
		s.logger.Warn().Err(err).Msg("could not read ledger, starting from an empty one")
		existing = nil
	}
	known := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		if r.OperationID != "" {
			known[r.OperationID] = struct{}{}
		}
	}
	st.Stored = len(existing)

	for offset := 0; ; offset += s.pageSize {
		if err := ctx.Err(); err != nil {
			return st, err
		}

		page, err := s.source.History(ctx, s.wallet, offset, s.pageSize)
		if err != nil {
			return st, &FetchError{Offset: offset, Err: err}
		}
		if len(page) == 0 {
			break
		}
		st.Pages++

		var rows []db.Row
		for _, tx := range page {
			st.Processed++
			id := tx.OperationID()
			if _, dup := known[id]; dup {
				st.Duplicates++
				continue
			}

			res := classifier.Classify(tx, s.wallet)
			switch res.Kind {
			case classifier.Unsupported:
				st.Unsupported++
				s.logger.Warn().Str("type", res.TxType).Str("hash", id).Msg("⚠️ ignoring transaction type " + res.TxType)
				continue
			case classifier.Malformed:
				st.Malformed++
				s.logger.Debug().Str("type", res.TxType).Str("missing", res.Missing).Str("hash", id).Msg("skipping incomplete transaction")
				continue
			}

			known[id] = struct{}{}
			rows = append(rows, res.Row)
		}

		stored, err := s.ledger.Append(rows)
		if err != nil {
			return st, fmt.Errorf("persist ledger: %w", err)
		}
		st.Added += len(rows)
		st.Stored = stored

		s.logger.Info().Int("processed", st.Processed).Int("new", len(rows)).Int("in_ledger", st.Stored).Msg("📦 page synced")
	}

	s.logger.Info().Int("added", st.Added).Int("in_ledger", st.Stored).Msg("✅ sync complete")
	return st, nil
}

// FetchError wraps any failure of the history source: HTTP status,
// transport or decoding.
type FetchError struct {
	Offset int
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch history at offset %d: %v", e.Offset, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsFetchError reports whether err came from the history source rather than
// the ledger.
func IsFetchError(err error) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr)
}

// Package snapshot archives labeled copies of the engine's balance
// snapshot. Archives are write-once and never read back by the engine;
// they exist for audit and reporting, not for restoring state.
package snapshot

import (
	"context"
	"errors"

	"github.com/ledgerline/ledgerline/internal/ledger"
)

var (
	// ErrLabelExists indicates the archive label was already used; archives
	// are write-once.
	ErrLabelExists = errors.New("snapshot label exists")

	// ErrNotFound indicates no archive exists under the requested label.
	ErrNotFound = errors.New("snapshot not found")
)

// Store defines the contract implemented by archive backends (e.g. Postgres).
type Store interface {
	Save(ctx context.Context, label string, rows []ledger.Snapshot) error
	Load(ctx context.Context, label string) ([]ledger.Snapshot, error)
}

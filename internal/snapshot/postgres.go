package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerline/ledgerline/internal/amount"
	"github.com/ledgerline/ledgerline/internal/ledger"
)

// PostgresStore persists snapshot archives in PostgreSQL. Balances are
// stored as minor units (bigint) so no precision is lost.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed archive store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Save inserts all rows of the archive in one transaction.
func (s *PostgresStore) Save(ctx context.Context, label string, rows []ledger.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	const insert = `INSERT INTO snapshot_archives
        (label, client_id, available_minor, held_minor, total_minor, locked, archived_at)
        VALUES ($1, $2, $3, $4, $5, $6, now())`
	for _, row := range rows {
		if _, err := tx.Exec(ctx, insert,
			label,
			int32(row.ClientID),
			int64(row.Available),
			int64(row.Held),
			int64(row.Total),
			row.Locked,
		); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return fmt.Errorf("label %q: %w", label, ErrLabelExists)
			}
			return err
		}
	}

	return tx.Commit(ctx)
}

// Load fetches all rows archived under the label.
func (s *PostgresStore) Load(ctx context.Context, label string) ([]ledger.Snapshot, error) {
	const query = `SELECT client_id, available_minor, held_minor, total_minor, locked
        FROM snapshot_archives WHERE label = $1 ORDER BY client_id`
	pgRows, err := s.db.Query(ctx, query, label)
	if err != nil {
		return nil, err
	}
	defer pgRows.Close()

	var rows []ledger.Snapshot
	for pgRows.Next() {
		var clientID int32
		var available, held, total int64
		var locked bool
		if err := pgRows.Scan(&clientID, &available, &held, &total, &locked); err != nil {
			return nil, err
		}
		rows = append(rows, ledger.Snapshot{
			ClientID:  uint16(clientID),
			Available: amount.Amount(available),
			Held:      amount.Amount(held),
			Total:     amount.Amount(total),
			Locked:    locked,
		})
	}
	if err := pgRows.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("label %q: %w", label, ErrNotFound)
	}
	return rows, nil
}

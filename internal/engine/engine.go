// Package engine drives the transaction stream: records are applied to the
// ledger strictly in input order, per-record failures are logged and
// dropped, and the final snapshot is rendered once the input is exhausted.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/ledgerline/ledgerline/internal/feed"
	"github.com/ledgerline/ledgerline/internal/ledger"
	"github.com/ledgerline/ledgerline/internal/notification"
)

// Report summarizes one processing pass over a feed.
type Report struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
}

// Processor applies transactions to a ledger. The ledger core is
// single-threaded; the processor's mutex serializes callers (the HTTP
// handlers) so transactions still land one at a time, in arrival order.
type Processor struct {
	mu       sync.Mutex
	ledger   *ledger.Ledger
	notifier notification.Notifier
	logger   *slog.Logger
}

// New builds a processor over a fresh ledger.
func New(logger *slog.Logger, notifier notification.Notifier) *Processor {
	return &Processor{
		ledger:   ledger.New(),
		notifier: notifier,
		logger:   logger,
	}
}

// Apply routes one transaction through the ledger. Failures are labeled
// with the transaction kind and id. A successful chargeback additionally
// emits an account-locked notification.
func (p *Processor) Apply(ctx context.Context, tx ledger.Transaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.apply(ctx, tx)
}

func (p *Processor) apply(ctx context.Context, tx ledger.Transaction) error {
	if err := p.ledger.Apply(tx); err != nil {
		return fmt.Errorf("cannot process %s(%d): %w", tx.Kind, tx.TxID, err)
	}

	if tx.Kind == ledger.KindChargeback {
		msg := notification.Message{
			Kind:     notification.KindAccountLocked,
			ClientID: tx.ClientID,
			TxID:     tx.TxID,
			Body:     fmt.Sprintf("account %d locked by chargeback of tx %d", tx.ClientID, tx.TxID),
		}
		if err := p.notifier.Send(ctx, msg); err != nil {
			p.logger.Warn("notify account locked", "client", tx.ClientID, "error", err)
		}
	}
	return nil
}

// Process consumes the feed until EOF. Malformed rows and account rule
// violations are logged and skipped; only a broken input stream aborts the
// pass, and the partial report is still returned.
func (p *Processor) Process(ctx context.Context, r io.Reader) (Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var report Report
	reader := feed.NewReader(r)
	for {
		tx, err := reader.Read()
		if err == io.EOF {
			return report, nil
		}
		if err != nil {
			if errors.Is(err, feed.ErrMalformedRecord) {
				report.Skipped++
				p.logger.Warn("record skipped", "error", err)
				continue
			}
			return report, fmt.Errorf("read feed: %w", err)
		}

		if err := p.apply(ctx, tx); err != nil {
			report.Skipped++
			p.logger.Warn("record skipped",
				"type", string(tx.Kind),
				"client", tx.ClientID,
				"tx", tx.TxID,
				"error", err)
			continue
		}
		report.Processed++
	}
}

// ProcessFile opens and processes a feed file.
func (p *Processor) ProcessFile(ctx context.Context, path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("open feed: %w", err)
	}
	defer f.Close()

	return p.Process(ctx, f)
}

// Snapshots returns the current balance rows, one per known client.
func (p *Processor) Snapshots() []ledger.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ledger.Snapshot()
}

// Snapshot returns the balance row for one client.
func (p *Processor) Snapshot(clientID uint16) (ledger.Snapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	acct, ok := p.ledger.Account(clientID)
	if !ok {
		return ledger.Snapshot{}, false
	}
	return ledger.Snapshot{
		ClientID:  acct.ClientID(),
		Available: acct.Available(),
		Held:      acct.Held(),
		Total:     acct.Total(),
		Locked:    acct.Locked(),
	}, true
}

// WriteSnapshot renders the final snapshot as CSV.
func (p *Processor) WriteSnapshot(w io.Writer) error {
	return feed.WriteSnapshot(w, p.Snapshots())
}

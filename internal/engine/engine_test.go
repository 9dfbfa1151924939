package engine

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/ledgerline/ledgerline/internal/ledger"
	"github.com/ledgerline/ledgerline/internal/logging"
	"github.com/ledgerline/ledgerline/internal/notification"
)

type recordingNotifier struct {
	messages []notification.Message
}

func (n *recordingNotifier) Send(_ context.Context, message notification.Message) error {
	n.messages = append(n.messages, message)
	return nil
}

func newTestProcessor() *Processor {
	return New(logging.Discard(), notification.NewLoggerNotifier(nil))
}

func assertRow(t *testing.T, p *Processor, clientID uint16, available, held, total string, locked bool) {
	t.Helper()
	row, ok := p.Snapshot(clientID)
	if !ok {
		t.Fatalf("client %d missing from snapshot", clientID)
	}
	if row.Available.String() != available || row.Held.String() != held || row.Total.String() != total || row.Locked != locked {
		t.Fatalf("client %d: expected %s/%s/%s locked=%v, got %s/%s/%s locked=%v",
			clientID, available, held, total, locked,
			row.Available, row.Held, row.Total, row.Locked)
	}
}

func TestProcessExampleFile(t *testing.T) {
	p := newTestProcessor()
	report, err := p.ProcessFile(context.Background(), "testdata/example.csv")
	if err != nil {
		t.Fatalf("process file: %v", err)
	}

	if report.Processed != 4 || report.Skipped != 1 {
		t.Fatalf("expected 4 processed / 1 skipped, got %+v", report)
	}
	assertRow(t, p, 1, "1.5000", "0.0000", "1.5000", false)
	assertRow(t, p, 2, "2.0000", "0.0000", "2.0000", false)
}

func TestProcessSkipsMalformedRows(t *testing.T) {
	p := newTestProcessor()
	report, err := p.ProcessFile(context.Background(), "testdata/wrong.csv")
	if err != nil {
		t.Fatalf("process file: %v", err)
	}

	if report.Processed != 2 || report.Skipped != 4 {
		t.Fatalf("expected 2 processed / 4 skipped, got %+v", report)
	}
	assertRow(t, p, 1, "1.0000", "0.0000", "1.0000", false)
	assertRow(t, p, 2, "2.0000", "0.0000", "2.0000", false)
}

func TestProcessSkipsReferencesToUnknownAccountsAndDeposits(t *testing.T) {
	p := newTestProcessor()
	report, err := p.ProcessFile(context.Background(), "testdata/nonexistent.csv")
	if err != nil {
		t.Fatalf("process file: %v", err)
	}

	if report.Processed != 4 || report.Skipped != 4 {
		t.Fatalf("expected 4 processed / 4 skipped, got %+v", report)
	}
	assertRow(t, p, 1, "0.4900", "0.0000", "0.4900", false)
	assertRow(t, p, 3, "1.1400", "3.1400", "4.2800", false)
	if _, ok := p.Snapshot(2); ok {
		t.Fatal("withdrawal must not create an account")
	}
}

func TestProcessFileMissingIsFatal(t *testing.T) {
	p := newTestProcessor()
	if _, err := p.ProcessFile(context.Background(), "testdata/does-not-exist.csv"); err == nil {
		t.Fatal("expected error for missing input file")
	}
}

func TestDisputeLifecycleAcrossClients(t *testing.T) {
	p := newTestProcessor()
	ctx := context.Background()

	input := strings.Join([]string{
		"type,client,tx,amount",
		"deposit,1,1,1.0",
		"deposit,2,2,2.0",
		"dispute,1,1,",
	}, "\n")
	if _, err := p.Process(ctx, strings.NewReader(input)); err != nil {
		t.Fatalf("process: %v", err)
	}
	assertRow(t, p, 1, "0.0000", "1.0000", "1.0000", false)
	assertRow(t, p, 2, "2.0000", "0.0000", "2.0000", false)

	if err := p.Apply(ctx, ledger.Transaction{Kind: ledger.KindResolve, ClientID: 1, TxID: 1}); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	assertRow(t, p, 1, "1.0000", "0.0000", "1.0000", false)

	// A chargeback now requires the deposit to be disputed again first.
	err := p.Apply(ctx, ledger.Transaction{Kind: ledger.KindChargeback, ClientID: 1, TxID: 1})
	if err == nil {
		t.Fatal("chargeback on resolved deposit must fail")
	}
	if !strings.Contains(err.Error(), "cannot process chargeback(1)") {
		t.Fatalf("error not labeled with kind and tx id: %v", err)
	}
}

func TestChargebackEmitsAccountLockedNotification(t *testing.T) {
	notifier := &recordingNotifier{}
	p := New(logging.Discard(), notifier)
	ctx := context.Background()

	input := strings.Join([]string{
		"deposit,7,1,3.0",
		"dispute,7,1,",
		"chargeback,7,1,",
	}, "\n")
	if _, err := p.Process(ctx, strings.NewReader(input)); err != nil {
		t.Fatalf("process: %v", err)
	}

	if len(notifier.messages) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.messages))
	}
	msg := notifier.messages[0]
	if msg.Kind != notification.KindAccountLocked || msg.ClientID != 7 || msg.TxID != 1 {
		t.Fatalf("unexpected notification: %+v", msg)
	}
	assertRow(t, p, 7, "0.0000", "0.0000", "0.0000", true)
}

func TestWriteSnapshotRendersCSV(t *testing.T) {
	p := newTestProcessor()
	input := "deposit,1,1,1.5\ndeposit,2,2,2.0\n"
	if _, err := p.Process(context.Background(), strings.NewReader(input)); err != nil {
		t.Fatalf("process: %v", err)
	}

	var sb strings.Builder
	if err := p.WriteSnapshot(&sb); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if lines[0] != "client,available,held,total,locked" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	// Row order is unspecified; compare as a set.
	rows := lines[1:]
	sort.Strings(rows)
	want := []string{
		"1,1.5000,0.0000,1.5000,false",
		"2,2.0000,0.0000,2.0000,false",
	}
	if len(rows) != len(want) || rows[0] != want[0] || rows[1] != want[1] {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

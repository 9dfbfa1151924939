package ledger

import (
	"errors"
	"fmt"

	"github.com/ledgerline/ledgerline/internal/account"
	"github.com/ledgerline/ledgerline/internal/amount"
)

// ErrAccountNotFound occurs when a withdrawal, dispute, resolve or
// chargeback references a client that never deposited. Only deposits create
// accounts.
var ErrAccountNotFound = errors.New("account not found")

// Kind identifies a transaction type on the wire.
type Kind string

const (
	KindDeposit    Kind = "deposit"
	KindWithdrawal Kind = "withdrawal"
	KindDispute    Kind = "dispute"
	KindResolve    Kind = "resolve"
	KindChargeback Kind = "chargeback"
)

// ParseKind validates a textual transaction type.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindDeposit, KindWithdrawal, KindDispute, KindResolve, KindChargeback:
		return k, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// HasAmount reports whether records of this kind carry an amount column.
func (k Kind) HasAmount() bool {
	return k == KindDeposit || k == KindWithdrawal
}

// Transaction is one decoded record from the feed. Amount is meaningful
// only when Kind.HasAmount().
type Transaction struct {
	Kind     Kind
	ClientID uint16
	TxID     uint32
	Amount   amount.Amount
}

// Snapshot is one output row of client balances.
type Snapshot struct {
	ClientID  uint16
	Available amount.Amount
	Held      amount.Amount
	Total     amount.Amount
	Locked    bool
}

// Ledger maps client ids to their accounts. Accounts are created lazily on
// a client's first deposit and live for the whole run. The Ledger is not
// safe for concurrent use; the engine serializes access.
type Ledger struct {
	accounts map[uint16]*account.Account
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{accounts: make(map[uint16]*account.Account)}
}

// Apply routes one transaction to the owning account's operation. Failures
// leave the ledger and every account untouched.
func (l *Ledger) Apply(tx Transaction) error {
	acct, err := l.route(tx.ClientID, tx.Kind)
	if err != nil {
		return err
	}

	switch tx.Kind {
	case KindDeposit:
		return acct.Deposit(tx.TxID, tx.Amount)
	case KindWithdrawal:
		return acct.Withdraw(tx.Amount)
	case KindDispute:
		return acct.Dispute(tx.TxID)
	case KindResolve:
		return acct.Resolve(tx.TxID)
	case KindChargeback:
		return acct.Chargeback(tx.TxID)
	default:
		return fmt.Errorf("unknown transaction type %q", tx.Kind)
	}
}

// Account returns the account for a client, if one exists.
func (l *Ledger) Account(clientID uint16) (*account.Account, bool) {
	acct, ok := l.accounts[clientID]
	return acct, ok
}

// Snapshot returns one row per known account. Iteration order is
// unspecified.
func (l *Ledger) Snapshot() []Snapshot {
	rows := make([]Snapshot, 0, len(l.accounts))
	for _, acct := range l.accounts {
		rows = append(rows, Snapshot{
			ClientID:  acct.ClientID(),
			Available: acct.Available(),
			Held:      acct.Held(),
			Total:     acct.Total(),
			Locked:    acct.Locked(),
		})
	}
	return rows
}

func (l *Ledger) route(clientID uint16, kind Kind) (*account.Account, error) {
	if acct, ok := l.accounts[clientID]; ok {
		return acct, nil
	}
	if kind != KindDeposit {
		return nil, fmt.Errorf("account %d: %w", clientID, ErrAccountNotFound)
	}
	acct := account.New(clientID)
	l.accounts[clientID] = acct
	return acct, nil
}

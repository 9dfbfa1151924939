package account

import (
	"errors"
	"fmt"

	"github.com/ledgerline/ledgerline/internal/amount"
)

var (
	// ErrInsufficientFunds occurs when a debit or dispute asks for more than
	// the relevant balance holds.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAccountLocked indicates the account was frozen by a chargeback.
	// Locking blocks withdrawals and further chargebacks only.
	ErrAccountLocked = errors.New("account locked")

	// ErrDepositNotFound indicates a dispute, resolve or chargeback referenced
	// a transaction id this account never recorded a deposit under.
	ErrDepositNotFound = errors.New("deposit not found")

	// ErrDuplicateDeposit indicates a deposit reused an already-assigned
	// transaction id. Accepting it would silently orphan the earlier
	// deposit's dispute record, so it is rejected outright.
	ErrDuplicateDeposit = errors.New("duplicate deposit transaction id")
)

// DepositState tracks the dispute lifecycle of a single deposit.
type DepositState string

const (
	StateNormal      DepositState = "normal"
	StateDisputed    DepositState = "disputed"
	StateChargedBack DepositState = "charged_back"
)

// StateError reports a dispute-lifecycle operation attempted against a
// deposit in the wrong state, carrying both the actual and the required
// state.
type StateError struct {
	TxID     uint32
	Actual   DepositState
	Required DepositState
}

func (e *StateError) Error() string {
	return fmt.Sprintf("deposit %d in state %s, requires %s", e.TxID, e.Actual, e.Required)
}

type deposit struct {
	amount amount.Amount
	state  DepositState
}

// Account holds one client's balances and the deposits still tracked for
// dispute. total == available + held after every successful operation, and
// every operation either fully applies or leaves the account untouched.
// Accounts are not safe for concurrent use; callers serialize access.
type Account struct {
	clientID  uint16
	available amount.Amount
	held      amount.Amount
	total     amount.Amount
	locked    bool
	deposits  map[uint32]*deposit
}

// New creates an unlocked account with zero balances.
func New(clientID uint16) *Account {
	return &Account{
		clientID: clientID,
		deposits: make(map[uint32]*deposit),
	}
}

// Deposit credits the account and records the deposit for later dispute.
// Deposits are accepted even on a locked account: a chargeback must not
// prevent legitimate incoming funds from being recorded.
func (a *Account) Deposit(txID uint32, amt amount.Amount) error {
	if _, exists := a.deposits[txID]; exists {
		return fmt.Errorf("tx %d: %w", txID, ErrDuplicateDeposit)
	}

	a.deposits[txID] = &deposit{amount: amt, state: StateNormal}
	a.available = a.available.Add(amt)
	a.total = a.total.Add(amt)
	return nil
}

// Withdraw debits available funds. Fails on a locked account or when
// available does not cover the amount.
func (a *Account) Withdraw(amt amount.Amount) error {
	if err := a.ensureUnlocked(); err != nil {
		return err
	}
	if a.available < amt {
		return fmt.Errorf("account %d: %w: %s available, %s requested",
			a.clientID, ErrInsufficientFunds, a.available, amt)
	}

	a.available = a.available.Sub(amt)
	a.total = a.total.Sub(amt)
	return nil
}

// Dispute freezes the funds of a previously recorded deposit. A withdrawal
// may already have spent the disputed funds, in which case the dispute
// fails rather than driving available negative. Disputes are permitted on
// locked accounts.
func (a *Account) Dispute(txID uint32) error {
	dep, err := a.depositIn(txID, StateNormal)
	if err != nil {
		return err
	}
	if a.available < dep.amount {
		return fmt.Errorf("account %d: %w: %s available, %s disputed",
			a.clientID, ErrInsufficientFunds, a.available, dep.amount)
	}

	a.available = a.available.Sub(dep.amount)
	a.held = a.held.Add(dep.amount)
	dep.state = StateDisputed
	return nil
}

// Resolve releases a disputed deposit's funds back to available. Permitted
// on locked accounts.
func (a *Account) Resolve(txID uint32) error {
	dep, err := a.depositIn(txID, StateDisputed)
	if err != nil {
		return err
	}

	a.available = a.available.Add(dep.amount)
	a.held = a.held.Sub(dep.amount)
	dep.state = StateNormal
	return nil
}

// Chargeback withdraws a disputed deposit's held funds and locks the
// account for the remainder of the run. ChargedBack is terminal: the
// deposit can never be disputed or resolved again.
func (a *Account) Chargeback(txID uint32) error {
	if err := a.ensureUnlocked(); err != nil {
		return err
	}
	dep, err := a.depositIn(txID, StateDisputed)
	if err != nil {
		return err
	}
	// Guards against state corruption; cannot trigger while the
	// total == available + held invariant holds.
	if a.total < dep.amount {
		return fmt.Errorf("account %d: %w: %s total, %s charged back",
			a.clientID, ErrInsufficientFunds, a.total, dep.amount)
	}

	a.total = a.total.Sub(dep.amount)
	a.held = a.held.Sub(dep.amount)
	dep.state = StateChargedBack
	a.locked = true
	return nil
}

// ClientID returns the owning client's identifier.
func (a *Account) ClientID() uint16 { return a.clientID }

// Available returns the withdrawable balance.
func (a *Account) Available() amount.Amount { return a.available }

// Held returns the balance frozen pending dispute resolution.
func (a *Account) Held() amount.Amount { return a.held }

// Total returns the full accounted balance.
func (a *Account) Total() amount.Amount { return a.total }

// Locked reports whether a chargeback has frozen the account.
func (a *Account) Locked() bool { return a.locked }

func (a *Account) depositIn(txID uint32, required DepositState) (*deposit, error) {
	dep, ok := a.deposits[txID]
	if !ok {
		return nil, fmt.Errorf("tx %d: %w", txID, ErrDepositNotFound)
	}
	if dep.state != required {
		return nil, &StateError{TxID: txID, Actual: dep.state, Required: required}
	}
	return dep, nil
}

func (a *Account) ensureUnlocked() error {
	if a.locked {
		return fmt.Errorf("account %d: %w", a.clientID, ErrAccountLocked)
	}
	return nil
}

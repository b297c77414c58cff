package ledger

import (
	"fmt"

	pkgerrors "github.com/angelmondragon/txledger/pkg/errors"
	"github.com/angelmondragon/txledger/pkg/money"
)

type transactionKind uint8

const (
	kindDeposit transactionKind = iota + 1
	kindWithdrawal
)

func (k transactionKind) String() string {
	switch k {
	case kindDeposit:
		return "deposit"
	case kindWithdrawal:
		return "withdrawal"
	}
	return "unknown"
}

type transaction struct {
	kind   transactionKind
	amount money.Amount
}

// account is the mutable state of one client. transactions only holds deposits and
// withdrawals that succeeded and were not resolved; disputes is a subset of its keys.
type account struct {
	available    money.Amount
	held         money.Amount
	locked       bool
	transactions map[TransactionID]transaction
	disputes     map[TransactionID]struct{}
}

func newAccount() *account {
	return &account{
		transactions: make(map[TransactionID]transaction),
		disputes:     make(map[TransactionID]struct{}),
	}
}

func (a *account) deposit(tx TransactionID, amount money.Amount) Outcome {
	if _, exists := a.transactions[tx]; exists {
		return OutcomeDuplicate
	}
	a.transactions[tx] = transaction{kind: kindDeposit, amount: amount}
	a.available = a.available.Add(amount)
	return OutcomeApplied
}

func (a *account) withdraw(tx TransactionID, amount money.Amount) Outcome {
	if _, exists := a.transactions[tx]; exists {
		return OutcomeDuplicate
	}
	available, ok := a.available.Sub(amount)
	if !ok {
		return OutcomeInsufficientFunds
	}
	a.available = available
	a.transactions[tx] = transaction{kind: kindWithdrawal, amount: amount}
	return OutcomeApplied
}

func (a *account) dispute(tx TransactionID) Outcome {
	if _, open := a.disputes[tx]; open {
		return OutcomeAlreadyDisputed
	}
	record, ok := a.transactions[tx]
	if !ok {
		return OutcomeUnknownTransaction
	}

	switch record.kind {
	case kindDeposit:
		available, ok := a.available.Sub(record.amount)
		if !ok {
			return OutcomeInsufficientFunds
		}
		a.available = available
		a.held = a.held.Add(record.amount)
	case kindWithdrawal:
		// The withdrawn funds already left available; only hold against them.
		a.held = a.held.Add(record.amount)
	}
	a.disputes[tx] = struct{}{}
	return OutcomeApplied
}

func (a *account) resolve(tx TransactionID) Outcome {
	record, ok := a.openDispute(tx)
	if !ok {
		return OutcomeNotDisputed
	}

	a.release(tx, record)
	if record.kind == kindDeposit {
		a.available = a.available.Add(record.amount)
	}
	delete(a.transactions, tx)
	delete(a.disputes, tx)
	return OutcomeApplied
}

func (a *account) chargeback(tx TransactionID) Outcome {
	record, ok := a.openDispute(tx)
	if !ok {
		return OutcomeNotDisputed
	}

	a.release(tx, record)
	if record.kind == kindWithdrawal {
		a.available = a.available.Add(record.amount)
	}
	delete(a.disputes, tx)
	a.locked = true
	return OutcomeApplied
}

func (a *account) openDispute(tx TransactionID) (transaction, bool) {
	if _, open := a.disputes[tx]; !open {
		return transaction{}, false
	}
	record, ok := a.transactions[tx]
	if !ok {
		panic(pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("disputed transaction %d missing from history", tx)))
	}
	return record, true
}

// release removes a disputed amount from held. Every amount added to held for a
// transaction is released once, so an underflow means the bookkeeping is corrupt.
func (a *account) release(tx TransactionID, record transaction) {
	held, ok := a.held.Sub(record.amount)
	if !ok {
		panic(pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf(
			"held balance %s cannot cover disputed %s %d of %s", a.held, record.kind, tx, record.amount,
		)))
	}
	a.held = held
}

func (a *account) summary(client ClientID) AccountSummary {
	return AccountSummary{
		Client:    client,
		Locked:    a.locked,
		Available: a.available,
		Held:      a.held,
		Total:     a.available.Add(a.held),
	}
}

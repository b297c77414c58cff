package ledger

import (
	"fmt"
	"maps"
	"slices"

	"github.com/angelmondragon/txledger/pkg/enums"
)

// Outcome reports what applying one event did. Every outcome other than
// OutcomeApplied is a silently dropped instruction, not an error.
type Outcome string

const (
	OutcomeApplied            Outcome = "applied"
	OutcomeDuplicate          Outcome = "duplicate_transaction"
	OutcomeInsufficientFunds  Outcome = "insufficient_funds"
	OutcomeUnknownTransaction Outcome = "unknown_transaction"
	OutcomeAlreadyDisputed    Outcome = "already_disputed"
	OutcomeNotDisputed        Outcome = "not_disputed"
	OutcomeAccountLocked      Outcome = "account_locked"
)

func (o Outcome) String() string {
	return string(o)
}

// Applied reports whether the event changed account state.
func (o Outcome) Applied() bool {
	return o == OutcomeApplied
}

// Engine owns every client account for one run. It is not safe for concurrent use.
type Engine struct {
	accounts map[ClientID]*account
}

func NewEngine() *Engine {
	return &Engine{accounts: make(map[ClientID]*account)}
}

// Apply applies a single event. The client's account is created on first reference,
// even when the event itself is then ignored.
func (e *Engine) Apply(ev Event) Outcome {
	acct := e.account(ev.Client)
	if acct.locked {
		return OutcomeAccountLocked
	}

	switch ev.Type {
	case enums.EventTypeDeposit:
		return acct.deposit(ev.Tx, ev.Amount)
	case enums.EventTypeWithdrawal:
		return acct.withdraw(ev.Tx, ev.Amount)
	case enums.EventTypeDispute:
		return acct.dispute(ev.Tx)
	case enums.EventTypeResolve:
		return acct.resolve(ev.Tx)
	case enums.EventTypeChargeback:
		return acct.chargeback(ev.Tx)
	}
	panic(fmt.Sprintf("ledger: unsupported event type %q", ev.Type))
}

func (e *Engine) account(client ClientID) *account {
	acct, ok := e.accounts[client]
	if !ok {
		acct = newAccount()
		e.accounts[client] = acct
	}
	return acct
}

// Summary returns the current state of one client.
func (e *Engine) Summary(client ClientID) (AccountSummary, bool) {
	acct, ok := e.accounts[client]
	if !ok {
		return AccountSummary{}, false
	}
	return acct.summary(client), true
}

// Summaries returns one row per client ever referenced, ordered by client id.
func (e *Engine) Summaries() []AccountSummary {
	clients := slices.Sorted(maps.Keys(e.accounts))
	out := make([]AccountSummary, 0, len(clients))
	for _, client := range clients {
		out = append(out, e.accounts[client].summary(client))
	}
	return out
}

// Len returns the number of accounts.
func (e *Engine) Len() int {
	return len(e.accounts)
}

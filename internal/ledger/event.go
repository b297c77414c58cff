package ledger

import (
	"fmt"

	"github.com/angelmondragon/txledger/pkg/enums"
	"github.com/angelmondragon/txledger/pkg/money"
)

// ClientID partitions the ledger; every client owns exactly one account.
type ClientID uint16

// TransactionID names a deposit or withdrawal. Lookups are scoped to the client
// that created it.
type TransactionID uint32

// Event is one instruction from the input stream. Amount is only meaningful for
// deposits and withdrawals.
type Event struct {
	Type   enums.EventType `json:"type"`
	Client ClientID        `json:"client"`
	Tx     TransactionID   `json:"tx"`
	Amount money.Amount    `json:"amount"`
}

func Deposit(client ClientID, tx TransactionID, amount money.Amount) Event {
	return Event{Type: enums.EventTypeDeposit, Client: client, Tx: tx, Amount: amount}
}

func Withdrawal(client ClientID, tx TransactionID, amount money.Amount) Event {
	return Event{Type: enums.EventTypeWithdrawal, Client: client, Tx: tx, Amount: amount}
}

func Dispute(client ClientID, tx TransactionID) Event {
	return Event{Type: enums.EventTypeDispute, Client: client, Tx: tx}
}

func Resolve(client ClientID, tx TransactionID) Event {
	return Event{Type: enums.EventTypeResolve, Client: client, Tx: tx}
}

func Chargeback(client ClientID, tx TransactionID) Event {
	return Event{Type: enums.EventTypeChargeback, Client: client, Tx: tx}
}

func (e Event) String() string {
	if e.Type.CarriesAmount() {
		return fmt.Sprintf("%s(client=%d tx=%d amount=%s)", e.Type, e.Client, e.Tx, e.Amount)
	}
	return fmt.Sprintf("%s(client=%d tx=%d)", e.Type, e.Client, e.Tx)
}

// AccountSummary is the reported state of one client at the end of a run.
type AccountSummary struct {
	Client    ClientID     `json:"client"`
	Locked    bool         `json:"locked"`
	Available money.Amount `json:"available"`
	Held      money.Amount `json:"held"`
	Total     money.Amount `json:"total"`
}

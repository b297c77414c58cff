package ingest

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/angelmondragon/txledger/internal/ledger"
	"github.com/angelmondragon/txledger/pkg/enums"
	pkgerrors "github.com/angelmondragon/txledger/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const basicCSV = `type, client, tx, amount
deposit, 1,   1, 1.0
deposit, 2,2,2.0
deposit, 1, 3, 2
withdrawal, 1, 4, 1.5
withdrawal, 2, 5, 3.0
`

const disputeCSV = `type, client, tx, amount
deposit, 1, 1, 1.0
dispute, 1, 1,
chargeback, 1, 1,
deposit, 2, 2, 2.0
deposit, 1, 3, 2.0
withdrawal, 1, 4, 1.5
withdrawal, 2, 5, 3.0
chargeback, 2, 2,
dispute, 2, 2,
resolve, 2, 2,
dispute, 2, 2,
withdrawal, 2, 6, 2
`

func drain(t *testing.T, src ledger.Source) ([]ledger.Event, error) {
	t.Helper()
	var events []ledger.Event
	for {
		ev, err := src.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
}

func TestCSVSourceReadsTrimmedRows(t *testing.T) {
	events, err := drain(t, NewCSVSource(strings.NewReader(basicCSV)))
	require.NoError(t, err)
	require.Len(t, events, 5)

	assert.Equal(t, enums.EventTypeDeposit, events[0].Type)
	assert.Equal(t, ledger.ClientID(1), events[0].Client)
	assert.Equal(t, ledger.TransactionID(1), events[0].Tx)
	assert.Equal(t, "1.0000", events[0].Amount.String())

	assert.Equal(t, ledger.ClientID(2), events[1].Client)
	assert.Equal(t, "2.0000", events[2].Amount.String())
	assert.Equal(t, enums.EventTypeWithdrawal, events[4].Type)
	assert.Equal(t, "3.0000", events[4].Amount.String())
}

func TestCSVSourceDisputeRowsWithoutAmount(t *testing.T) {
	events, err := drain(t, NewCSVSource(strings.NewReader(disputeCSV)))
	require.NoError(t, err)
	require.Len(t, events, 12)

	assert.Equal(t, enums.EventTypeDispute, events[1].Type)
	assert.True(t, events[1].Amount.IsZero())
	assert.Equal(t, enums.EventTypeChargeback, events[2].Type)
	assert.Equal(t, enums.EventTypeResolve, events[9].Type)
}

func TestCSVSourceShortRowsAndIgnoredAmount(t *testing.T) {
	input := "type,client,tx,amount\ndispute,1,1\nresolve,1,1,garbage\n"
	events, err := drain(t, NewCSVSource(strings.NewReader(input)))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, enums.EventTypeResolve, events[1].Type)
}

func TestCSVSourceColumnsByHeaderName(t *testing.T) {
	input := "amount,tx,client,type\n5.25,10,3,deposit\n"
	events, err := drain(t, NewCSVSource(strings.NewReader(input)))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ledger.ClientID(3), events[0].Client)
	assert.Equal(t, ledger.TransactionID(10), events[0].Tx)
	assert.Equal(t, "5.2500", events[0].Amount.String())
}

func TestCSVSourceEmptyInput(t *testing.T) {
	events, err := drain(t, NewCSVSource(strings.NewReader("")))
	require.NoError(t, err)
	assert.Empty(t, events)

	events, err = drain(t, NewCSVSource(strings.NewReader("type,client,tx,amount\n")))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestCSVSourceRejectsMalformedRecords(t *testing.T) {
	cases := map[string]struct {
		row   string
		field string
	}{
		"unknown type":        {row: "transfer,1,1,1.0", field: "type"},
		"capitalised type":    {row: "Deposit,1,1,1.0", field: "type"},
		"missing client":      {row: "deposit,,1,1.0", field: "client"},
		"negative client":     {row: "deposit,-1,1,1.0", field: "client"},
		"client overflow":     {row: "deposit,65536,1,1.0", field: "client"},
		"tx overflow":         {row: "deposit,1,4294967296,1.0", field: "tx"},
		"missing amount":      {row: "deposit,1,1,", field: "amount"},
		"malformed amount":    {row: "withdrawal,1,1,1.1.1", field: "amount"},
		"amount with letters": {row: "deposit,1,1,abc", field: "amount"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			input := "type,client,tx,amount\ndeposit,9,9,1\n" + tc.row + "\n"
			events, err := drain(t, NewCSVSource(strings.NewReader(input)))
			require.Error(t, err)
			assert.Len(t, events, 1)

			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

			details, ok := typed.Details().(map[string]any)
			require.True(t, ok, "details should be a map, got %T", typed.Details())
			assert.Equal(t, 3, details["line"])
			assert.Contains(t, details, tc.field)
		})
	}
}

func TestCSVSourceMaxIDsAccepted(t *testing.T) {
	input := "type,client,tx,amount\ndeposit,65535,4294967295,1\n"
	events, err := drain(t, NewCSVSource(strings.NewReader(input)))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ledger.ClientID(65535), events[0].Client)
	assert.Equal(t, ledger.TransactionID(4294967295), events[0].Tx)
}

func TestCSVSourceMissingHeaderColumn(t *testing.T) {
	_, err := drain(t, NewCSVSource(strings.NewReader("type,client,amount\ndeposit,1,1\n")))
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestCSVSourceQuoteSyntaxError(t *testing.T) {
	_, err := drain(t, NewCSVSource(strings.NewReader("type,client,tx,amount\ndeposit,\"1,1,1\n")))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestCSVSourceReadFailureIsIO(t *testing.T) {
	_, err := drain(t, NewCSVSource(failingReader{}))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeIO, pkgerrors.As(err).Code())
}

func TestCSVSourceHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewCSVSource(strings.NewReader(basicCSV)).Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCSVSourceFeedsAggregation(t *testing.T) {
	events, err := drain(t, NewCSVSource(strings.NewReader(disputeCSV)))
	require.NoError(t, err)

	engine := ledger.NewEngine()
	for _, ev := range events {
		engine.Apply(ev)
	}
	summaries := engine.Summaries()
	require.Len(t, summaries, 2)
	assert.True(t, summaries[0].Locked)
	assert.True(t, summaries[0].Total.IsZero())
	assert.False(t, summaries[1].Locked)
	assert.True(t, summaries[1].Total.IsZero())
}

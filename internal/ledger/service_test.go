package ledger

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/angelmondragon/txledger/pkg/logger"
)

type fakeSource struct {
	events []Event
	err    error
	failAt int
	calls  int
}

func (f *fakeSource) Next(ctx context.Context) (Event, error) {
	if err := ctx.Err(); err != nil {
		return Event{}, err
	}
	idx := f.calls
	f.calls++
	if f.err != nil && idx == f.failAt {
		return Event{}, f.err
	}
	if idx >= len(f.events) {
		return Event{}, io.EOF
	}
	return f.events[idx], nil
}

type countingObserver struct {
	seen map[string]int
}

func (c *countingObserver) ObserveEvent(eventType, outcome string) {
	if c.seen == nil {
		c.seen = make(map[string]int)
	}
	c.seen[eventType+"/"+outcome]++
}

func newTestService(t *testing.T, observer EventObserver) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Logger: logger.Nop(), Observer: observer})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestNewServiceRequiresLogger(t *testing.T) {
	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatalf("expected error without logger")
	}
}

func TestServiceProcessSummaries(t *testing.T) {
	observer := &countingObserver{}
	svc := newTestService(t, observer)
	src := &fakeSource{events: []Event{
		Deposit(1, 1, amt("1.0")),
		Deposit(2, 2, amt("2.0")),
		Deposit(1, 3, amt("2.0")),
		Withdrawal(1, 4, amt("1.5")),
		Withdrawal(2, 5, amt("3.0")),
	}}

	summaries, err := svc.Process(context.Background(), src)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].Available.String() != "1.5000" || summaries[1].Available.String() != "2.0000" {
		t.Fatalf("unexpected summaries %+v", summaries)
	}
	if observer.seen["deposit/applied"] != 3 {
		t.Fatalf("expected 3 applied deposits, got %v", observer.seen)
	}
	if observer.seen["withdrawal/insufficient_funds"] != 1 {
		t.Fatalf("expected 1 rejected withdrawal, got %v", observer.seen)
	}
}

func TestServiceProcessAbortsOnSourceError(t *testing.T) {
	svc := newTestService(t, nil)
	boom := errors.New("bad row")
	src := &fakeSource{
		events: []Event{Deposit(1, 1, amt("1")), Deposit(1, 2, amt("1"))},
		err:    boom,
		failAt: 1,
	}

	summaries, err := svc.Process(context.Background(), src)
	if !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}
	if summaries != nil {
		t.Fatalf("expected no summaries on failure, got %+v", summaries)
	}
}

func TestServiceProcessHonoursCancellation(t *testing.T) {
	svc := newTestService(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Process(ctx, &fakeSource{events: []Event{Deposit(1, 1, amt("1"))}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestServiceProcessRequiresSource(t *testing.T) {
	svc := newTestService(t, nil)
	if _, err := svc.Process(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil source")
	}
}

func TestServiceProcessLogsIgnoredEventsAtDebug(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: buf})
	svc, err := NewService(ServiceParams{Logger: log})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Process(context.Background(), &fakeSource{events: []Event{Dispute(4, 99)}})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"outcome":"unknown_transaction"`) {
		t.Fatalf("expected ignored event to be logged; got %s", out)
	}
	if !strings.Contains(out, `"ignored":1`) {
		t.Fatalf("expected run counts to be logged; got %s", out)
	}
}

package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"

	pkgerrors "github.com/angelmondragon/txledger/pkg/errors"
	"github.com/angelmondragon/txledger/pkg/logger"
	"github.com/rs/zerolog"
)

// Source yields events in arrival order. Next returns io.EOF once the input is
// exhausted; any other error aborts the run.
type Source interface {
	Next(ctx context.Context) (Event, error)
}

// EventObserver is notified of every event outcome.
type EventObserver interface {
	ObserveEvent(eventType, outcome string)
}

// Service drives a Source through a fresh Engine.
type Service interface {
	Process(ctx context.Context, src Source) ([]AccountSummary, error)
}

type ServiceParams struct {
	Logger   *logger.Logger
	Observer EventObserver
}

type service struct {
	logg     *logger.Logger
	observer EventObserver
}

// NewService wires a ledger service with the provided collaborators.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("ledger logger required")
	}
	observer := params.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	return &service{logg: params.Logger, observer: observer}, nil
}

// Process reads src to the end. No summaries are returned when src fails or the
// engine detects an inconsistent balance.
func (s *service) Process(ctx context.Context, src Source) (summaries []AccountSummary, err error) {
	if src == nil {
		return nil, fmt.Errorf("ledger source required")
	}
	defer func() {
		if r := recover(); r != nil {
			fault, ok := r.(*pkgerrors.Error)
			if !ok {
				panic(r)
			}
			summaries, err = nil, fault
		}
	}()

	engine := NewEngine()
	debug := s.logg.Enabled(ctx, zerolog.DebugLevel)
	var applied, ignored int
	for {
		ev, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		outcome := engine.Apply(ev)
		s.observer.ObserveEvent(ev.Type.String(), outcome.String())
		if outcome.Applied() {
			applied++
			continue
		}
		ignored++
		if debug {
			s.logg.Debug(ctx, "event ignored", map[string]any{
				"type":    ev.Type,
				"client":  ev.Client,
				"tx":      ev.Tx,
				"outcome": outcome,
			})
		}
	}

	summaries = engine.Summaries()
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"applied":  applied,
		"ignored":  ignored,
		"accounts": len(summaries),
	}), "ledger processed")
	return summaries, nil
}

type nopObserver struct{}

func (nopObserver) ObserveEvent(string, string) {}

package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/angelmondragon/txledger/internal/ledger"
	pkgerrors "github.com/angelmondragon/txledger/pkg/errors"
)

// JSONSource reads a stream of JSON objects, one event each. A single top-level
// array of objects is accepted as well.
type JSONSource struct {
	src     *readErrRecorder
	br      *bufio.Reader
	dec     *json.Decoder
	array   bool
	started bool
	done    bool
	index   int
}

func NewJSONSource(r io.Reader) *JSONSource {
	src := &readErrRecorder{r: r}
	return &JSONSource{src: src, br: bufio.NewReader(src)}
}

func (s *JSONSource) Next(ctx context.Context) (ledger.Event, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Event{}, err
	}
	if !s.started {
		if err := s.start(); err != nil {
			return ledger.Event{}, err
		}
	}
	if s.done {
		return ledger.Event{}, io.EOF
	}
	if s.array && !s.dec.More() {
		if _, err := s.dec.Token(); err != nil {
			return ledger.Event{}, s.decodeError(err)
		}
		s.done = true
		return ledger.Event{}, io.EOF
	}

	var rec record
	if err := s.dec.Decode(&rec); err != nil {
		return ledger.Event{}, s.decodeError(err)
	}
	s.index++
	return rec.event(s.index)
}

// start peeks past leading whitespace to tell a stream from an array.
func (s *JSONSource) start() error {
	s.started = true
	for {
		b, err := s.br.ReadByte()
		if err != nil {
			s.dec = json.NewDecoder(s.br)
			if errors.Is(err, io.EOF) {
				return io.EOF
			}
			return pkgerrors.Wrap(pkgerrors.CodeIO, err, "reading input")
		}
		if b == ' ' || b == '\t' || b == '\r' || b == '\n' {
			continue
		}
		if err := s.br.UnreadByte(); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeIO, err, "reading input")
		}
		s.array = b == '['
		break
	}

	s.dec = json.NewDecoder(s.br)
	if s.array {
		if _, err := s.dec.Token(); err != nil {
			return s.decodeError(err)
		}
	}
	return nil
}

func (s *JSONSource) decodeError(err error) error {
	if s.src.err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeIO, s.src.err, "reading input")
	}
	if errors.Is(err, io.EOF) && !s.array {
		return io.EOF
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed json").
		WithDetails(map[string]any{"record": s.index + 1})
}

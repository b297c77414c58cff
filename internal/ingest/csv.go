package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/angelmondragon/txledger/internal/ledger"
	pkgerrors "github.com/angelmondragon/txledger/pkg/errors"
)

var requiredColumns = []string{"type", "client", "tx"}

// CSVSource reads events from CSV with a header row. Columns are located by
// header name; a trailing empty amount column may be omitted.
type CSVSource struct {
	src     *readErrRecorder
	reader  *csv.Reader
	columns map[string]int
}

func NewCSVSource(r io.Reader) *CSVSource {
	src := &readErrRecorder{r: r}
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true
	return &CSVSource{src: src, reader: reader}
}

func (s *CSVSource) Next(ctx context.Context) (ledger.Event, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Event{}, err
	}
	if s.columns == nil {
		if err := s.readHeader(); err != nil {
			return ledger.Event{}, err
		}
	}

	row, err := s.reader.Read()
	if err != nil {
		return ledger.Event{}, s.readError(err)
	}
	line, _ := s.reader.FieldPos(0)

	rec := record{
		Type:   flexString(s.field(row, "type")),
		Client: flexString(s.field(row, "client")),
		Tx:     flexString(s.field(row, "tx")),
		Amount: flexString(s.field(row, "amount")),
	}
	return rec.event(line)
}

func (s *CSVSource) readHeader() error {
	header, err := s.reader.Read()
	if err != nil {
		return s.readError(err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid header").
				WithDetails(map[string]any{"line": 1, "missing_column": name})
		}
	}
	s.columns = columns
	return nil
}

func (s *CSVSource) field(row []string, name string) string {
	idx, ok := s.columns[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (s *CSVSource) readError(err error) error {
	if errors.Is(err, io.EOF) {
		return io.EOF
	}
	if s.src.err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeIO, s.src.err, "reading input")
	}
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed csv").
			WithDetails(map[string]any{"line": parseErr.Line})
	}
	return pkgerrors.Wrap(pkgerrors.CodeIO, err, "reading input")
}

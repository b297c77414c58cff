// Package report renders account summaries for output.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/angelmondragon/txledger/internal/ledger"
	pkgerrors "github.com/angelmondragon/txledger/pkg/errors"
)

// Format names an output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

var csvHeader = []string{"client", "locked", "available", "held", "total"}

// Writer renders a complete set of summaries.
type Writer interface {
	Write(summaries []ledger.AccountSummary) error
}

// NewWriter returns a Writer for format that writes to w.
func NewWriter(format Format, w io.Writer) (Writer, error) {
	switch format {
	case FormatCSV, "":
		return &CSVWriter{w: w}, nil
	case FormatJSON:
		return &JSONWriter{w: w}, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported output format %q", format))
}

// CSVWriter writes a header followed by one row per summary.
type CSVWriter struct {
	w io.Writer
}

func (c *CSVWriter) Write(summaries []ledger.AccountSummary) error {
	writer := csv.NewWriter(c.w)
	if err := writer.Write(csvHeader); err != nil {
		return writeError(err)
	}
	row := make([]string, len(csvHeader))
	for _, s := range summaries {
		row[0] = strconv.FormatUint(uint64(s.Client), 10)
		row[1] = strconv.FormatBool(s.Locked)
		row[2] = s.Available.String()
		row[3] = s.Held.String()
		row[4] = s.Total.String()
		if err := writer.Write(row); err != nil {
			return writeError(err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return writeError(err)
	}
	return nil
}

// JSONWriter writes the summaries as one indented JSON array.
type JSONWriter struct {
	w io.Writer
}

func (j *JSONWriter) Write(summaries []ledger.AccountSummary) error {
	if summaries == nil {
		summaries = []ledger.AccountSummary{}
	}
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summaries); err != nil {
		return writeError(err)
	}
	return nil
}

func writeError(err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeIO, err, "writing report")
}

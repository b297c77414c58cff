package ingest

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/angelmondragon/txledger/internal/ledger"
	pkgerrors "github.com/angelmondragon/txledger/pkg/errors"
)

// Format names an input encoding.
type Format string

const (
	FormatAuto  Format = "auto"
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
)

func (f Format) String() string {
	return string(f)
}

// ParseFormat accepts auto, csv or jsonl in any case.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatAuto, "":
		return FormatAuto, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSONL:
		return FormatJSONL, nil
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported input format %q", value))
}

// DetectFormat picks a format from the file extension, defaulting to CSV.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson", ".json":
		return FormatJSONL
	}
	return FormatCSV
}

// Resolve replaces FormatAuto with the format detected from path.
func Resolve(format Format, path string) Format {
	if format == FormatAuto || format == "" {
		return DetectFormat(path)
	}
	return format
}

// NewSource returns a ledger.Source decoding r in the given format.
func NewSource(format Format, r io.Reader) (ledger.Source, error) {
	switch format {
	case FormatCSV:
		return NewCSVSource(r), nil
	case FormatJSONL:
		return NewJSONSource(r), nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported input format %q", format))
}

type readErrRecorder struct {
	r   io.Reader
	err error
}

func (r *readErrRecorder) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if err != nil && err != io.EOF {
		r.err = err
	}
	return n, err
}

package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/angelmondragon/txledger/internal/ledger"
	"github.com/angelmondragon/txledger/pkg/enums"
	pkgerrors "github.com/angelmondragon/txledger/pkg/errors"
	"github.com/angelmondragon/txledger/pkg/money"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// flexString decodes a JSON string, number or null into its text form.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = flexString(n.String())
	return nil
}

// record is one raw input row before conversion. Every field is trimmed text.
type record struct {
	Type   flexString `json:"type" validate:"required,oneof=deposit withdrawal dispute resolve chargeback"`
	Client flexString `json:"client" validate:"required,number"`
	Tx     flexString `json:"tx" validate:"required,number"`
	Amount flexString `json:"amount"`
}

func (r *record) trim() {
	r.Type = flexString(strings.TrimSpace(string(r.Type)))
	r.Client = flexString(strings.TrimSpace(string(r.Client)))
	r.Tx = flexString(strings.TrimSpace(string(r.Tx)))
	r.Amount = flexString(strings.TrimSpace(string(r.Amount)))
}

// event validates the record and converts it. line identifies the record in errors.
func (r record) event(line int) (ledger.Event, error) {
	r.trim()
	if err := validate.Struct(r); err != nil {
		return ledger.Event{}, formatValidationErrors(err, line)
	}

	eventType, err := enums.ParseEventType(string(r.Type))
	if err != nil {
		return ledger.Event{}, fieldError(line, "type", err.Error())
	}
	client, err := strconv.ParseUint(string(r.Client), 10, 16)
	if err != nil {
		return ledger.Event{}, fieldError(line, "client", "must be an unsigned 16-bit integer")
	}
	tx, err := strconv.ParseUint(string(r.Tx), 10, 32)
	if err != nil {
		return ledger.Event{}, fieldError(line, "tx", "must be an unsigned 32-bit integer")
	}

	ev := ledger.Event{
		Type:   eventType,
		Client: ledger.ClientID(client),
		Tx:     ledger.TransactionID(tx),
	}
	if !eventType.CarriesAmount() {
		return ev, nil
	}
	if r.Amount == "" {
		return ledger.Event{}, fieldError(line, "amount", "is required")
	}
	amount, err := money.Parse(string(r.Amount))
	if err != nil {
		return ledger.Event{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid record").
			WithDetails(map[string]any{"line": line, "amount": err.Error()})
	}
	ev.Amount = amount
	return ev, nil
}

func fieldError(line int, field, msg string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid record").
		WithDetails(map[string]any{"line": line, field: msg})
}

func formatValidationErrors(err error, line int) *pkgerrors.Error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		details := map[string]any{"line": line}
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = validationMessage(fieldErr)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid record").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid record").
		WithDetails(map[string]any{"line": line})
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	case "number":
		return "must contain only decimal digits"
	}
	return "is invalid"
}

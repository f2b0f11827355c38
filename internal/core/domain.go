package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type (
	// Transaction is a single recorded financial event. A positive amount is
	// income, a negative amount is an expense.
	Transaction struct {
		ID        uuid.UUID
		Text      string
		Amount    decimal.Decimal
		CreatedAt time.Time
	}

	// PlanItem is a budget allocation for one category of the monthly plan.
	PlanItem struct {
		ID       int64
		Category string
		Amount   decimal.Decimal
	}

	// TransactionInput carries every client-writable Transaction field.
	TransactionInput struct {
		Text   string
		Amount decimal.Decimal
	}

	// TransactionPatch carries a subset of the client-writable fields; nil
	// fields are left untouched.
	TransactionPatch struct {
		Text   *string
		Amount *decimal.Decimal
	}

	PlanItemInput struct {
		Category string
		Amount   decimal.Decimal
	}

	PlanItemPatch struct {
		Category *string
		Amount   *decimal.Decimal
	}
)

// Field names as exposed to clients.
const (
	FieldText     = "text"
	FieldAmount   = "amount"
	FieldCategory = "category"

	// FieldNonField collects errors that do not belong to a single field.
	FieldNonField = "non_field_errors"
)

// Validation messages.
const (
	MsgRequired = "This field is required."
	MsgBlank    = "This field may not be blank."
	MsgNull     = "This field may not be null."
	MsgString   = "Not a valid string."
	MsgNumber   = "A valid number is required."
)

var ErrNotFound = errors.New("not found")

// ValidationError reports every offending field of a payload at once.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns an empty error ready to collect messages.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add records a message against a field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Merge copies the messages of other into e.
func (e *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	for field, msgs := range other.Fields {
		for _, msg := range msgs {
			e.Add(field, msg)
		}
	}
}

// Has reports whether the field already has a message.
func (e *ValidationError) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

// Empty reports whether no message has been recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// Err returns e as an error, or nil when it holds no messages.
func (e *ValidationError) Err() error {
	if e == nil || e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e.Fields[name], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func (in TransactionInput) Validate() error {
	ve := NewValidationError()
	checkText(ve, FieldText, in.Text)
	checkAmount(ve, in.Amount)
	return ve.Err()
}

func (p TransactionPatch) Validate() error {
	ve := NewValidationError()
	if p.Text != nil {
		checkText(ve, FieldText, *p.Text)
	}
	if p.Amount != nil {
		checkAmount(ve, *p.Amount)
	}
	return ve.Err()
}

// Patch turns a full input into a patch touching every writable field.
func (in TransactionInput) Patch() TransactionPatch {
	text, amount := in.Text, in.Amount
	return TransactionPatch{Text: &text, Amount: &amount}
}

// Apply returns t with the patch applied. ID and CreatedAt are never changed.
func (t Transaction) Apply(p TransactionPatch) Transaction {
	if p.Text != nil {
		t.Text = strings.TrimSpace(*p.Text)
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	return t
}

func (in PlanItemInput) Validate() error {
	ve := NewValidationError()
	checkText(ve, FieldCategory, in.Category)
	checkAmount(ve, in.Amount)
	return ve.Err()
}

func (p PlanItemPatch) Validate() error {
	ve := NewValidationError()
	if p.Category != nil {
		checkText(ve, FieldCategory, *p.Category)
	}
	if p.Amount != nil {
		checkAmount(ve, *p.Amount)
	}
	return ve.Err()
}

func (in PlanItemInput) Patch() PlanItemPatch {
	category, amount := in.Category, in.Amount
	return PlanItemPatch{Category: &category, Amount: &amount}
}

// Apply returns it with the patch applied. ID is never changed.
func (it PlanItem) Apply(p PlanItemPatch) PlanItem {
	if p.Category != nil {
		it.Category = strings.TrimSpace(*p.Category)
	}
	if p.Amount != nil {
		it.Amount = *p.Amount
	}
	return it
}

// NewTransaction builds a Transaction from validated input, assigning its
// identity and creation time.
func NewTransaction(in TransactionInput, now time.Time) (Transaction, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return Transaction{}, fmt.Errorf("generate transaction id: %w", err)
	}
	return Transaction{
		ID:        id,
		Text:      strings.TrimSpace(in.Text),
		Amount:    in.Amount,
		CreatedAt: now.UTC(),
	}, nil
}

func checkText(ve *ValidationError, field, s string) {
	if strings.TrimSpace(s) == "" {
		ve.Add(field, MsgBlank)
	}
}

func checkAmount(ve *ValidationError, d decimal.Decimal) {
	if err := CheckAmount(d); err != nil {
		ve.Add(FieldAmount, err.Error())
	}
}

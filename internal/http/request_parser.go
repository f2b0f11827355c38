// Package http provides HTTP server and handler implementations.
//
// This file decodes JSON request bodies field by field so that missing,
// null and mistyped fields are reported per field before any domain checks.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"finance/internal/core"

	"github.com/shopspring/decimal"
)

// maxBodyBytes bounds request bodies; records are a handful of short fields.
const maxBodyBytes = 1 << 20

// RequestPayload holds the top-level fields of a JSON object body.
type RequestPayload struct {
	fields map[string]json.RawMessage
	errs   *core.ValidationError
}

// ParseRequestPayload reads r's body as a JSON object. An empty body is an
// empty object. Syntax errors and non-object bodies are returned as a
// validation error under non_field_errors.
func ParseRequestPayload(w http.ResponseWriter, r *http.Request) (*RequestPayload, *core.ValidationError) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		ve := core.NewValidationError()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ve.Add(core.FieldNonField, fmt.Sprintf("Request body exceeds %d bytes.", maxBodyBytes))
		} else {
			ve.Add(core.FieldNonField, "Could not read request body.")
		}
		return nil, ve
	}

	p := &RequestPayload{
		fields: make(map[string]json.RawMessage),
		errs:   core.NewValidationError(),
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return p, nil
	}

	if body[0] != '{' {
		ve := core.NewValidationError()
		ve.Add(core.FieldNonField, "Invalid data. Expected a JSON object.")
		return nil, ve
	}
	if err := json.Unmarshal(body, &p.fields); err != nil {
		ve := core.NewValidationError()
		ve.Add(core.FieldNonField, "JSON parse error - "+err.Error())
		return nil, ve
	}
	return p, nil
}

// String returns the value of a string field. required controls whether a
// missing field is an error; a missing optional field returns nil.
func (p *RequestPayload) String(field string, required bool) *string {
	raw, ok := p.lookup(field, required)
	if !ok {
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &s
	}
	// Numbers are accepted and kept in their literal form.
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		s = n.String()
		return &s
	}
	p.errs.Add(field, core.MsgString)
	return nil
}

// Amount returns the value of a decimal field given as a JSON number or a
// numeric string.
func (p *RequestPayload) Amount(field string, required bool) *decimal.Decimal {
	raw, ok := p.lookup(field, required)
	if !ok {
		return nil
	}

	var text string
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		text = n.String()
	} else if err := json.Unmarshal(raw, &text); err != nil {
		p.errs.Add(field, core.MsgNumber)
		return nil
	}

	d, err := core.ParseAmount(text)
	if err != nil {
		p.errs.Add(field, core.MsgNumber)
		return nil
	}
	return &d
}

// Errors returns the accumulated field errors, merged with extra domain
// errors, or nil when there are none.
func (p *RequestPayload) Errors(extra error) *core.ValidationError {
	var ve *core.ValidationError
	if errors.As(extra, &ve) {
		p.errs.Merge(ve)
	}
	if p.errs.Empty() {
		return nil
	}
	return p.errs
}

func (p *RequestPayload) lookup(field string, required bool) (json.RawMessage, bool) {
	raw, ok := p.fields[field]
	if !ok {
		if required {
			p.errs.Add(field, core.MsgRequired)
		}
		return nil, false
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		p.errs.Add(field, core.MsgNull)
		return nil, false
	}
	return raw, true
}

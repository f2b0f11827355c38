package http

import (
	"net/http"

	"finance/internal/core"
	applog "finance/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	ts, err := s.transactions.List(r.Context())
	if err != nil {
		s.writeError(w, r, err, applog.ComponentTransaction, applog.OpList)
		return
	}
	NewJSONResponse().JSON(newTransactionListResponse(ts)).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p, ve := ParseRequestPayload(w, r)
	if ve != nil {
		ValidationErrorResponse(ve).Write(w)
		return
	}

	patch := core.TransactionPatch{
		Text:   p.String(core.FieldText, true),
		Amount: p.Amount(core.FieldAmount, true),
	}
	if ve := p.Errors(patch.Validate()); ve != nil {
		ValidationErrorResponse(ve).Write(w)
		return
	}

	t, err := s.transactions.Create(r.Context(), core.TransactionInput{Text: *patch.Text, Amount: *patch.Amount})
	if err != nil {
		s.writeError(w, r, err, applog.ComponentTransaction, applog.OpCreate)
		return
	}

	s.audit.LogWrite(r.Context(), applog.ComponentTransaction, applog.OpCreate, "transaction", t.ID.String())
	NewJSONResponse().Status(http.StatusCreated).JSON(newTransactionResponse(t)).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTransactionID(r.PathValue("id"))
	if !ok {
		NotFoundError().Write(w)
		return
	}

	t, err := s.transactions.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, applog.ComponentTransaction, applog.OpRead)
		return
	}
	NewJSONResponse().JSON(newTransactionResponse(t)).Write(w)
}

// handleUpdateTransaction serves PUT, which needs every writable field, and
// PATCH, which takes any subset.
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTransactionID(r.PathValue("id"))
	if !ok {
		NotFoundError().Write(w)
		return
	}

	p, ve := ParseRequestPayload(w, r)
	if ve != nil {
		ValidationErrorResponse(ve).Write(w)
		return
	}

	full := r.Method == http.MethodPut
	patch := core.TransactionPatch{
		Text:   p.String(core.FieldText, full),
		Amount: p.Amount(core.FieldAmount, full),
	}
	if ve := p.Errors(patch.Validate()); ve != nil {
		ValidationErrorResponse(ve).Write(w)
		return
	}

	t, err := s.transactions.Update(r.Context(), id, patch)
	if err != nil {
		s.writeError(w, r, err, applog.ComponentTransaction, applog.OpUpdate)
		return
	}

	s.audit.LogWrite(r.Context(), applog.ComponentTransaction, applog.OpUpdate, "transaction", t.ID.String())
	NewJSONResponse().JSON(newTransactionResponse(t)).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTransactionID(r.PathValue("id"))
	if !ok {
		NotFoundError().Write(w)
		return
	}

	if err := s.transactions.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err, applog.ComponentTransaction, applog.OpDelete)
		return
	}

	s.audit.LogWrite(r.Context(), applog.ComponentTransaction, applog.OpDelete, "transaction", id.String())
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

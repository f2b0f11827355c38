package http

import (
	"net/http"
	"strconv"

	"finance/internal/core"
	applog "finance/internal/log"
)

func (s *Server) handleListPlanItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.plan.List(r.Context())
	if err != nil {
		s.writeError(w, r, err, applog.ComponentPlan, applog.OpList)
		return
	}
	NewJSONResponse().JSON(newPlanItemListResponse(items)).Write(w)
}

func (s *Server) handleCreatePlanItem(w http.ResponseWriter, r *http.Request) {
	p, ve := ParseRequestPayload(w, r)
	if ve != nil {
		ValidationErrorResponse(ve).Write(w)
		return
	}

	patch := core.PlanItemPatch{
		Category: p.String(core.FieldCategory, true),
		Amount:   p.Amount(core.FieldAmount, true),
	}
	if ve := p.Errors(patch.Validate()); ve != nil {
		ValidationErrorResponse(ve).Write(w)
		return
	}

	it, err := s.plan.Create(r.Context(), core.PlanItemInput{Category: *patch.Category, Amount: *patch.Amount})
	if err != nil {
		s.writeError(w, r, err, applog.ComponentPlan, applog.OpCreate)
		return
	}

	s.audit.LogWrite(r.Context(), applog.ComponentPlan, applog.OpCreate, "plan_item", strconv.FormatInt(it.ID, 10))
	NewJSONResponse().Status(http.StatusCreated).JSON(newPlanItemResponse(it)).Write(w)
}

func (s *Server) handleGetPlanItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePlanItemID(r.PathValue("id"))
	if !ok {
		NotFoundError().Write(w)
		return
	}

	it, err := s.plan.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, applog.ComponentPlan, applog.OpRead)
		return
	}
	NewJSONResponse().JSON(newPlanItemResponse(it)).Write(w)
}

func (s *Server) handleUpdatePlanItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePlanItemID(r.PathValue("id"))
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
	patch := core.PlanItemPatch{
		Category: p.String(core.FieldCategory, full),
		Amount:   p.Amount(core.FieldAmount, full),
	}
	if ve := p.Errors(patch.Validate()); ve != nil {
		ValidationErrorResponse(ve).Write(w)
		return
	}

	it, err := s.plan.Update(r.Context(), id, patch)
	if err != nil {
		s.writeError(w, r, err, applog.ComponentPlan, applog.OpUpdate)
		return
	}

	s.audit.LogWrite(r.Context(), applog.ComponentPlan, applog.OpUpdate, "plan_item", strconv.FormatInt(it.ID, 10))
	NewJSONResponse().JSON(newPlanItemResponse(it)).Write(w)
}

func (s *Server) handleDeletePlanItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePlanItemID(r.PathValue("id"))
	if !ok {
		NotFoundError().Write(w)
		return
	}

	if err := s.plan.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err, applog.ComponentPlan, applog.OpDelete)
		return
	}

	s.audit.LogWrite(r.Context(), applog.ComponentPlan, applog.OpDelete, "plan_item", strconv.FormatInt(id, 10))
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

package services

import (
	"context"
	"fmt"
	"strconv"

	"finance/internal/amqp"
	"finance/internal/core"
	"finance/internal/store"
)

// PlanService wraps a plan store and announces every successful write.
type PlanService struct {
	store     store.PlanStore
	publisher ChangePublisher
}

func NewPlanService(s store.PlanStore, publisher ChangePublisher) *PlanService {
	return &PlanService{store: s, publisher: publisher}
}

func (s *PlanService) List(ctx context.Context) ([]core.PlanItem, error) {
	return s.store.ListPlanItems(ctx)
}

func (s *PlanService) Get(ctx context.Context, id int64) (core.PlanItem, error) {
	return s.store.GetPlanItem(ctx, id)
}

func (s *PlanService) Create(ctx context.Context, in core.PlanItemInput) (core.PlanItem, error) {
	it, err := s.store.CreatePlanItem(ctx, in)
	if err != nil {
		return core.PlanItem{}, fmt.Errorf("create plan item: %w", err)
	}
	notify(ctx, s.publisher, amqp.ResourcePlanItem, amqp.ActionCreated, strconv.FormatInt(it.ID, 10))
	return it, nil
}

func (s *PlanService) Update(ctx context.Context, id int64, p core.PlanItemPatch) (core.PlanItem, error) {
	it, err := s.store.UpdatePlanItem(ctx, id, p)
	if err != nil {
		return core.PlanItem{}, fmt.Errorf("update plan item: %w", err)
	}
	notify(ctx, s.publisher, amqp.ResourcePlanItem, amqp.ActionUpdated, strconv.FormatInt(it.ID, 10))
	return it, nil
}

func (s *PlanService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeletePlanItem(ctx, id); err != nil {
		return fmt.Errorf("delete plan item: %w", err)
	}
	notify(ctx, s.publisher, amqp.ResourcePlanItem, amqp.ActionDeleted, strconv.FormatInt(id, 10))
	return nil
}

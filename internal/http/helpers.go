package http

import (
	"encoding/json"
	"strconv"
	"time"

	"finance/internal/core"

	"github.com/google/uuid"
)

// createdAtLayout renders timestamps in UTC with microsecond precision.
const createdAtLayout = "2006-01-02T15:04:05.000000Z07:00"

type transactionResponse struct {
	ID        string      `json:"id"`
	Text      string      `json:"text"`
	Amount    json.Number `json:"amount"`
	CreatedAt string      `json:"created_at"`
}

type planItemResponse struct {
	ID       int64       `json:"id"`
	Category string      `json:"category"`
	Amount   json.Number `json:"amount"`
}

func newTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:        t.ID.String(),
		Text:      t.Text,
		Amount:    json.Number(core.FormatAmount(t.Amount)),
		CreatedAt: formatTimestamp(t.CreatedAt),
	}
}

func newTransactionListResponse(ts []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, newTransactionResponse(t))
	}
	return out
}

func newPlanItemResponse(it core.PlanItem) planItemResponse {
	return planItemResponse{
		ID:       it.ID,
		Category: it.Category,
		Amount:   json.Number(core.FormatAmount(it.Amount)),
	}
}

func newPlanItemListResponse(items []core.PlanItem) []planItemResponse {
	out := make([]planItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, newPlanItemResponse(it))
	}
	return out
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(createdAtLayout)
}

// parseTransactionID accepts the canonical hyphenated UUID form only.
func parseTransactionID(raw string) (uuid.UUID, bool) {
	if len(raw) != 36 {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// parsePlanItemID accepts positive decimal integers only.
func parsePlanItemID(raw string) (int64, bool) {
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

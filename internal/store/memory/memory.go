package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"finance/internal/core"
	"finance/internal/store"

	"github.com/google/uuid"
)

// Ensure interface conformance
var (
	_ store.TransactionStore = (*Store)(nil)
	_ store.PlanStore        = (*Store)(nil)
	_ store.Pinger           = (*Store)(nil)
)

// Store keeps both resources in process memory. Records are lost on restart.
type Store struct {
	mu  sync.Mutex
	now func() time.Time

	txns     map[uuid.UUID]core.Transaction
	txnOrder []uuid.UUID
	lastTime time.Time

	items    map[int64]core.PlanItem
	itemSeq  int64
	itemKeys []int64
}

// Option customises a Store.
type Option func(*Store)

// WithClock replaces time.Now as the source of created_at values.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		now:   time.Now,
		txns:  make(map[uuid.UUID]core.Transaction),
		items: make(map[int64]core.PlanItem),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromFiles seeds the monthly plan from base/seed_plan.txt, one category
// per line. Every seeded category starts with a zero allocation.
func NewFromFiles(base string, opts ...Option) *Store {
	s := New(opts...)
	for _, cat := range readLines(filepath.Join(base, "seed_plan.txt")) {
		s.itemSeq++
		s.items[s.itemSeq] = core.PlanItem{ID: s.itemSeq, Category: cat}
		s.itemKeys = append(s.itemKeys, s.itemSeq)
	}
	return s
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) ListTransactions(context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.txnOrder))
	for _, id := range s.txnOrder {
		out = append(out, s.txns[id])
	}
	return out, nil
}

func (s *Store) CreateTransaction(_ context.Context, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// created_at never goes backwards, even if the wall clock does.
	now := s.now().UTC()
	if now.Before(s.lastTime) {
		now = s.lastTime
	}
	t, err := core.NewTransaction(in, now)
	if err != nil {
		return core.Transaction{}, err
	}
	if _, dup := s.txns[t.ID]; dup {
		return core.Transaction{}, fmt.Errorf("duplicate transaction id %s", t.ID)
	}
	s.lastTime = now
	s.txns[t.ID] = t
	s.txnOrder = append(s.txnOrder, t.ID)
	return t, nil
}

func (s *Store) GetTransaction(_ context.Context, id uuid.UUID) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txns[id]
	if !ok {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, id uuid.UUID, p core.TransactionPatch) (core.Transaction, error) {
	if err := p.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txns[id]
	if !ok {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	t = t.Apply(p)
	s.txns[id] = t
	return t, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txns[id]; !ok {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	delete(s.txns, id)
	for i, v := range s.txnOrder {
		if v == id {
			s.txnOrder = append(s.txnOrder[:i], s.txnOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) ListPlanItems(context.Context) ([]core.PlanItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.PlanItem, 0, len(s.itemKeys))
	for _, id := range s.itemKeys {
		out = append(out, s.items[id])
	}
	return out, nil
}

func (s *Store) CreatePlanItem(_ context.Context, in core.PlanItemInput) (core.PlanItem, error) {
	if err := in.Validate(); err != nil {
		return core.PlanItem{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.itemSeq++
	it := core.PlanItem{
		ID:       s.itemSeq,
		Category: strings.TrimSpace(in.Category),
		Amount:   in.Amount,
	}
	s.items[it.ID] = it
	s.itemKeys = append(s.itemKeys, it.ID)
	return it, nil
}

func (s *Store) GetPlanItem(_ context.Context, id int64) (core.PlanItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return core.PlanItem{}, fmt.Errorf("plan item %d: %w", id, core.ErrNotFound)
	}
	return it, nil
}

func (s *Store) UpdatePlanItem(_ context.Context, id int64, p core.PlanItemPatch) (core.PlanItem, error) {
	if err := p.Validate(); err != nil {
		return core.PlanItem{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return core.PlanItem{}, fmt.Errorf("plan item %d: %w", id, core.ErrNotFound)
	}
	it = it.Apply(p)
	s.items[id] = it
	return it, nil
}

func (s *Store) DeletePlanItem(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("plan item %d: %w", id, core.ErrNotFound)
	}
	delete(s.items, id)
	for i, v := range s.itemKeys {
		if v == id {
			s.itemKeys = append(s.itemKeys[:i], s.itemKeys[i+1:]...)
			break
		}
	}
	return nil
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"storepulse/internal/domain"
)

type countingRepo struct {
	fakeRepo
	listCalls  int
	staffCalls int
}

func (c *countingRepo) ListReviews(ctx context.Context, limit int) ([]domain.Review, error) {
	c.listCalls++
	return []domain.Review{{Reviewer: "Ali"}}, nil
}

func (c *countingRepo) StaffSummary(ctx context.Context) ([]domain.SummaryRow, error) {
	c.staffCalls++
	return []domain.SummaryRow{{Staff: "Ali", Reviews: 2}}, nil
}

type memCache struct {
	data map[string][]byte
	err  error
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (m *memCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	b, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (m *memCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if m.err != nil {
		return m.err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = b
	return nil
}

func (m *memCache) Del(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func TestQueriesMissThenHit(t *testing.T) {
	repo := &countingRepo{}
	cache := newMemCache()
	q := NewQueryService(repo, cache, 60)
	ctx := context.Background()

	rows, err := q.StaffSummary(ctx)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if len(rows) != 1 || rows[0].Staff != "Ali" {
		t.Fatalf("rows = %+v", rows)
	}
	if repo.staffCalls != 1 {
		t.Fatalf("staffCalls = %d, want 1", repo.staffCalls)
	}

	rows, err = q.StaffSummary(ctx)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if len(rows) != 1 || rows[0].Reviews != 2 {
		t.Fatalf("cached rows = %+v", rows)
	}
	if repo.staffCalls != 1 {
		t.Errorf("second call hit the repository, staffCalls = %d", repo.staffCalls)
	}
}

func TestQueriesLimitScopesCacheKey(t *testing.T) {
	repo := &countingRepo{}
	cache := newMemCache()
	q := NewQueryService(repo, cache, 60)
	ctx := context.Background()

	if _, err := q.Reviews(ctx, 10); err != nil {
		t.Fatal(err)
	}
	if _, err := q.Reviews(ctx, 20); err != nil {
		t.Fatal(err)
	}
	if repo.listCalls != 2 {
		t.Errorf("different limits must not share a cache entry, listCalls = %d", repo.listCalls)
	}
	if _, err := q.Reviews(ctx, 10); err != nil {
		t.Fatal(err)
	}
	if repo.listCalls != 2 {
		t.Errorf("repeat limit should be served from cache, listCalls = %d", repo.listCalls)
	}
}

func TestQueriesCacheFailureDegradesToRepo(t *testing.T) {
	repo := &countingRepo{}
	cache := newMemCache()
	cache.err = errors.New("redis down")
	q := NewQueryService(repo, cache, 60)

	rows, err := q.StaffSummary(context.Background())
	if err != nil {
		t.Fatalf("cache failure must not surface: %v", err)
	}
	if len(rows) != 1 || repo.staffCalls != 1 {
		t.Errorf("rows = %+v, staffCalls = %d", rows, repo.staffCalls)
	}
}

func TestQueriesNilCache(t *testing.T) {
	repo := &countingRepo{}
	q := NewQueryService(repo, nil, 60)
	if _, err := q.StaffSummary(context.Background()); err != nil {
		t.Fatalf("nil cache: %v", err)
	}
}

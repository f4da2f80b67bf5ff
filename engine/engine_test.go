package engine

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/shopkit/behavior"
	"github.com/rushteam/shopkit/core"
	"github.com/rushteam/shopkit/store"
)

func testCatalog() *core.Catalog {
	return core.NewCatalog([]core.Product{
		{ID: "p1", Name: "Phone X", Category: "Electronics", CategoryID: "c1", Price: 999, Rating: 4.8, ReviewCount: 1200, Featured: true},
		{ID: "p2", Name: "Phone Y", Category: "Electronics", CategoryID: "c1", Price: 899, Rating: 4.6, ReviewCount: 800},
		{ID: "p3", Name: "Laptop Z", Category: "Electronics", CategoryID: "c2", Price: 1499, Rating: 4.7, ReviewCount: 300},
		{ID: "p4", Name: "Sneaker A", Category: "Fashion", CategoryID: "c3", Price: 120, Rating: 4.9, ReviewCount: 2100},
		{ID: "p5", Name: "Jacket B", Category: "Fashion", CategoryID: "c3", Price: 210, Rating: 4.2, ReviewCount: 95},
	})
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	backing := store.NewMemoryStore()
	t.Cleanup(func() { backing.Close() })
	session := behavior.New(backing, "test")
	return New(testCatalog(), session, opts...)
}

func sectionKeys(sections []Section) []string {
	out := make([]string, 0, len(sections))
	for _, s := range sections {
		out = append(out, s.Key)
	}
	return out
}

func TestBuildSections_NoRefDropsOptionalSections(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	_ = e.TrackImpression(ctx, "p1")

	sections := e.BuildSections(ctx, &core.RecommendContext{SessionID: "test"}, 4)

	// Without a reference product Similar and Collaborative are empty and
	// must be dropped, never returned as empty sections.
	got := sectionKeys(sections)
	want := []string{SectionTrending, SectionRecentlyViewed}
	if len(got) != len(want) {
		t.Fatalf("sections = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sections = %v, want %v", got, want)
		}
	}
	for _, s := range sections {
		if len(s.Items) == 0 {
			t.Errorf("section %s is empty but was not dropped", s.Key)
		}
	}
}

func TestBuildSections_FixedOrderWithRef(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	_ = e.TrackImpression(ctx, "p3")

	ref, _ := testCatalog().ByID("p1")
	sections := e.BuildSections(ctx, &core.RecommendContext{Ref: &ref}, 4)

	want := []string{SectionTrending, SectionSimilar, SectionRecentlyViewed, SectionCollaborative}
	got := sectionKeys(sections)
	if len(got) != len(want) {
		t.Fatalf("sections = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sections = %v, want %v", got, want)
		}
	}

	// Deterministic: repeated calls return identical section contents.
	again := e.BuildSections(ctx, &core.RecommendContext{Ref: &ref}, 4)
	for i := range sections {
		if len(sections[i].Items) != len(again[i].Items) {
			t.Fatalf("non-deterministic section %s", sections[i].Key)
		}
		for j := range sections[i].Items {
			if sections[i].Items[j].ID != again[i].Items[j].ID {
				t.Fatalf("non-deterministic section %s", sections[i].Key)
			}
		}
	}
}

func TestBuildSections_InvalidLimit(t *testing.T) {
	e := newTestEngine(t)
	for _, limit := range []int{0, -3} {
		if got := e.BuildSections(context.Background(), nil, limit); len(got) != 0 {
			t.Errorf("limit %d: sections = %v, want none", limit, sectionKeys(got))
		}
	}
}

func TestRecommend_ColdStart(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	items, err := e.Recommend(ctx, nil, 3)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	// featured OR rating >= 4.5, rating descending: p4(4.9) p1(4.8) p3(4.7).
	want := []string{"p4", "p1", "p3"}
	if len(items) != len(want) {
		t.Fatalf("items = %d, want %d", len(items), len(want))
	}
	for i, id := range want {
		if items[i].ID != id {
			t.Errorf("cold[%d] = %s, want %s", i, items[i].ID, id)
		}
	}
}

func TestRecommend_WarmPathFiltersByCategory(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	// Build an Electronics preference.
	for _, id := range []string{"p1", "p2", "p3"} {
		_ = e.TrackImpression(ctx, id)
	}

	items, err := e.Recommend(ctx, nil, 8)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(items) == 0 {
		t.Fatal("expected warm recommendations")
	}
	for _, it := range items {
		if it.Product.Category != "Electronics" {
			t.Errorf("item %s has category %s, want Electronics", it.ID, it.Product.Category)
		}
	}
}

func TestRecommend_InvalidLimit(t *testing.T) {
	e := newTestEngine(t)
	for _, limit := range []int{0, -1} {
		items, err := e.Recommend(context.Background(), nil, limit)
		if err != nil {
			t.Fatalf("Recommend: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("limit %d: got %d items, want 0", limit, len(items))
		}
	}
}

func TestClearHistoryResetsToColdStart(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	for _, id := range []string{"p4", "p5"} {
		_ = e.TrackImpression(ctx, id)
	}
	if m := e.PreferenceModel(ctx); m.IsCold() {
		t.Fatal("expected warm model after impressions")
	}

	if err := e.ClearHistory(ctx); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}
	if m := e.PreferenceModel(ctx); !m.IsCold() {
		t.Errorf("expected cold model after clear, got %v", m.PreferredCategories)
	}
}

func TestTrackPageVisitUsesClock(t *testing.T) {
	ctx := context.Background()
	now := time.UnixMilli(42000)
	e := newTestEngine(t, WithClock(func() time.Time { return now }))

	_ = e.TrackPageVisit(ctx, "/home")
	m := e.PreferenceModel(ctx)
	if m.LastActivity != now.UnixMilli() {
		t.Errorf("LastActivity = %d, want %d", m.LastActivity, now.UnixMilli())
	}
	if m.TotalViews != 1 {
		t.Errorf("TotalViews = %d, want 1", m.TotalViews)
	}
}

func TestEngineWithoutBehaviorStore(t *testing.T) {
	ctx := context.Background()
	e := New(testCatalog(), nil)

	if err := e.TrackImpression(ctx, "p1"); err != nil {
		t.Fatalf("TrackImpression: %v", err)
	}
	sections := e.BuildSections(ctx, nil, 4)
	// Only trending survives: no history, no ref.
	if got := sectionKeys(sections); len(got) != 1 || got[0] != SectionTrending {
		t.Errorf("sections = %v, want [trending]", got)
	}
	items, err := e.Recommend(ctx, nil, 4)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(items) == 0 {
		t.Error("expected cold-start fallback without behavior store")
	}
}

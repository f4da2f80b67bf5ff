package rank

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/shopkit/core"
)

func items(products ...core.Product) []*core.Item {
	out := make([]*core.Item, 0, len(products))
	for _, p := range products {
		out = append(out, core.NewProductItem(p))
	}
	return out
}

func TestPreference_ScoreAndOrder(t *testing.T) {
	model := &core.PreferenceModel{
		PreferredCategories: []string{"Electronics"},
		AveragePrice:        1000,
	}
	n := &Preference{Model: model}

	in := items(
		core.Product{ID: "far", Price: 1500, Rating: 5}, // 1.0 + 0.5 = 1.5
		core.Product{ID: "b", Price: 1000, Rating: 5},   // 1.0 + 1.0 = 2.0
		core.Product{ID: "a", Price: 1000, Rating: 5},   // 1.0 + 1.0 = 2.0
	)
	out, err := n.Process(context.Background(), nil, in)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	// Equal scores tie-break by id: "a" before "b".
	want := []string{"a", "b", "far"}
	for i, id := range want {
		if out[i].ID != id {
			t.Fatalf("order[%d] = %s, want %s (full: %v)", i, out[i].ID, id, idsOf(out))
		}
	}
	if got := out[2].Score; math.Abs(got-1.5) > 1e-9 {
		t.Errorf("Score = %v, want 1.5", got)
	}
}

func TestPreference_UnboundedPriceScore(t *testing.T) {
	// A product priced far from the average gets a negative price term
	// large enough to invert rating order. This follows the originating
	// system's formula and is preserved by default.
	model := &core.PreferenceModel{AveragePrice: 100}
	n := &Preference{Model: model}

	in := items(
		core.Product{ID: "outlier", Price: 5100, Rating: 5}, // 1.0 + (1-5) = -3.0
		core.Product{ID: "cheap", Price: 100, Rating: 1},    // 0.2 + 1.0 = 1.2
	)
	out, _ := n.Process(context.Background(), nil, in)
	if out[0].ID != "cheap" {
		t.Errorf("expected price distance to dominate, got %v", idsOf(out))
	}
	if out[1].Score != -3.0 {
		t.Errorf("outlier score = %v, want -3.0", out[1].Score)
	}
}

func TestPreference_PriceFloorOptIn(t *testing.T) {
	model := &core.PreferenceModel{AveragePrice: 100}
	n := &Preference{Model: model, PriceFloor: FloorOf(-1)}

	in := items(
		core.Product{ID: "outlier", Price: 5100, Rating: 5}, // 1.0 + max(-4, -1) = 0.0
		core.Product{ID: "cheap", Price: 100, Rating: 1},    // 0.2 + 1.0 = 1.2
	)
	out, _ := n.Process(context.Background(), nil, in)
	if out[1].Score != 0.0 {
		t.Errorf("floored outlier score = %v, want 0.0", out[1].Score)
	}
}

func TestPreference_NilModelPassesThrough(t *testing.T) {
	in := items(
		core.Product{ID: "b", Rating: 1},
		core.Product{ID: "a", Rating: 5},
	)
	n := &Preference{}
	out, _ := n.Process(context.Background(), nil, in)
	if out[0].ID != "b" || out[1].ID != "a" {
		t.Errorf("nil model must not reorder, got %v", idsOf(out))
	}
}

func idsOf(items []*core.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

package config

import (
	"context"
	"testing"

	"github.com/rushteam/shopkit/core"
	"github.com/rushteam/shopkit/pipeline"
	"github.com/rushteam/shopkit/recall"
)

func testDeps() Deps {
	return Deps{
		Catalog: core.NewCatalog([]core.Product{
			{ID: "p1", Category: "Electronics", CategoryID: "c1", Price: 999, Rating: 4.8, ReviewCount: 1200},
			{ID: "p2", Category: "Electronics", CategoryID: "c1", Price: 899, Rating: 4.6, ReviewCount: 800},
			{ID: "p3", Category: "Electronics", CategoryID: "c2", Price: 1499, Rating: 4.7, ReviewCount: 300},
			{ID: "p4", Category: "Fashion", CategoryID: "c3", Price: 120, Rating: 4.9, ReviewCount: 2100},
		}),
		History: historyOf{"p3", "p1"},
	}
}

type historyOf []string

func (h historyOf) RecentlyViewed(context.Context) ([]string, error) { return h, nil }

const pipelineYAML = `
pipeline:
  name: homepage
  nodes:
    - type: recall.fanout
      config:
        dedup: true
        sources:
          - type: trending
            min_rating: 4.5
            min_reviews: 100
            topk: 4
          - type: recent
            topk: 4
    - type: filter
      config:
        rules:
          - "product.price < 1400.0"
    - type: rerank.topn
      config:
        n: 3
`

func TestBuildPipelineFromYAML(t *testing.T) {
	cfg, err := pipeline.ParseYAML([]byte(pipelineYAML))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	if cfg.Pipeline.Name != "homepage" {
		t.Errorf("name = %q, want homepage", cfg.Pipeline.Name)
	}
	if len(cfg.Pipeline.Nodes) != 3 {
		t.Fatalf("nodes = %d, want 3", len(cfg.Pipeline.Nodes))
	}

	p, err := cfg.BuildPipeline(DefaultFactory(testDeps()))
	if err != nil {
		t.Fatalf("BuildPipeline: %v", err)
	}

	items, err := p.Run(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Trending yields p4 p1 p2 p3 (heat order), history appends p3 p1;
	// dedup keeps first occurrences, the price rule drops p3, topn keeps 3.
	want := []string{"p4", "p1", "p2"}
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d", len(items), len(want))
	}
	for i, id := range want {
		if items[i].ID != id {
			t.Errorf("items[%d] = %s, want %s", i, items[i].ID, id)
		}
	}
}

func TestFactoryUnknownNodeType(t *testing.T) {
	factory := DefaultFactory(testDeps())
	if _, err := factory.Build("recall.magic", nil); err == nil {
		t.Fatal("expected error for unknown node type")
	}
}

func TestFactoryBadRule(t *testing.T) {
	factory := DefaultFactory(testDeps())
	_, err := factory.Build("filter", map[string]any{
		"rules": []any{"product.price <"},
	})
	if err == nil {
		t.Fatal("expected error for malformed rule expression")
	}
}

func TestFanoutUnknownSourceType(t *testing.T) {
	factory := DefaultFactory(testDeps())
	_, err := factory.Build("recall.fanout", map[string]any{
		"sources": []any{map[string]any{"type": "embedding"}},
	})
	if err == nil {
		t.Fatal("expected error for unknown source type")
	}
}

func TestFactoryBuildsConfiguredSources(t *testing.T) {
	factory := DefaultFactory(testDeps())

	node, err := factory.Build("recall.collaborative", map[string]any{
		"price_window": 250,
		"topk":         2,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	collab, ok := node.(*recall.Collaborative)
	if !ok {
		t.Fatalf("node type = %T, want *recall.Collaborative", node)
	}
	if collab.PriceWindow != 250 || collab.TopK != 2 {
		t.Errorf("collab = %+v", collab)
	}
}

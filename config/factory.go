// Package config 提供配置驱动的 Pipeline 构建：注册 shopkit 内置 Node
// 的构建器，让候选源的阈值（评分/评论数/价格邻域/TopK）全部来自
// YAML/JSON 配置而不是代码里的魔法数字。
package config

import (
	"fmt"
	"time"

	"github.com/rushteam/shopkit/core"
	"github.com/rushteam/shopkit/filter"
	"github.com/rushteam/shopkit/pipeline"
	"github.com/rushteam/shopkit/pkg/conv"
	"github.com/rushteam/shopkit/recall"
	"github.com/rushteam/shopkit/rerank"
)

// Deps 是构建 Node 时注入的运行期依赖。配置只描述策略与阈值，
// 目录快照/行为历史这类活对象由宿主在进程内提供。
type Deps struct {
	Catalog *core.Catalog
	History recall.HistoryStore

	// Board 可选：离线热门榜所在的有序集合存储。
	Board core.KeyValueStore
}

// DefaultFactory 返回一个包含所有内置 Node 的工厂。
//
// 注意：rank.preference 不在此注册——偏好模型是按请求从当前行为
// 快照推导的，配置期拿不到，个性化链路由 engine 自行组装。
func DefaultFactory(deps Deps) *pipeline.NodeFactory {
	factory := pipeline.NewNodeFactory()

	factory.Register("recall.trending", func(cfg map[string]any) (pipeline.Node, error) {
		return buildTrending(deps, cfg), nil
	})
	factory.Register("recall.similar", func(cfg map[string]any) (pipeline.Node, error) {
		return &recall.Similar{
			Catalog: deps.Catalog,
			TopK:    conv.ConfigGetInt(cfg, "topk", 0),
		}, nil
	})
	factory.Register("recall.recent", func(cfg map[string]any) (pipeline.Node, error) {
		return &recall.Recent{
			Catalog: deps.Catalog,
			History: deps.History,
			TopK:    conv.ConfigGetInt(cfg, "topk", 0),
		}, nil
	})
	factory.Register("recall.collaborative", func(cfg map[string]any) (pipeline.Node, error) {
		return &recall.Collaborative{
			Catalog:     deps.Catalog,
			PriceWindow: conv.ConfigGetFloat(cfg, "price_window", 0),
			TopK:        conv.ConfigGetInt(cfg, "topk", 0),
		}, nil
	})
	factory.Register("recall.fanout", func(cfg map[string]any) (pipeline.Node, error) {
		return buildFanout(deps, cfg)
	})
	factory.Register("rerank.topn", func(cfg map[string]any) (pipeline.Node, error) {
		return &rerank.TopN{N: conv.ConfigGetInt(cfg, "n", 0)}, nil
	})
	factory.Register("filter", buildFilter)

	return factory
}

func buildTrending(deps Deps, cfg map[string]any) *recall.Trending {
	t := &recall.Trending{
		Catalog:    deps.Catalog,
		MinRating:  conv.ConfigGetFloat(cfg, "min_rating", 0),
		MinReviews: conv.ConfigGetInt(cfg, "min_reviews", 0),
		TopK:       conv.ConfigGetInt(cfg, "topk", 0),
	}
	if key := conv.ConfigGet(cfg, "board_key", ""); key != "" {
		t.Store = deps.Board
		t.Key = key
	}
	return t
}

func buildFanout(deps Deps, cfg map[string]any) (pipeline.Node, error) {
	sourcesConfig, ok := cfg["sources"].([]any)
	if !ok {
		return nil, fmt.Errorf("sources not found or invalid")
	}

	sources := make([]recall.Source, 0, len(sourcesConfig))
	for _, sc := range sourcesConfig {
		sourceMap, ok := sc.(map[string]any)
		if !ok {
			continue
		}
		switch sourceType := conv.ConfigGet(sourceMap, "type", ""); sourceType {
		case "trending":
			sources = append(sources, buildTrending(deps, sourceMap))
		case "similar":
			sources = append(sources, &recall.Similar{
				Catalog: deps.Catalog,
				TopK:    conv.ConfigGetInt(sourceMap, "topk", 0),
			})
		case "recent":
			sources = append(sources, &recall.Recent{
				Catalog: deps.Catalog,
				History: deps.History,
				TopK:    conv.ConfigGetInt(sourceMap, "topk", 0),
			})
		case "collaborative":
			sources = append(sources, &recall.Collaborative{
				Catalog:     deps.Catalog,
				PriceWindow: conv.ConfigGetFloat(sourceMap, "price_window", 0),
				TopK:        conv.ConfigGetInt(sourceMap, "topk", 0),
			})
		default:
			return nil, fmt.Errorf("unknown source type: %s", sourceType)
		}
	}

	fanout := &recall.Fanout{
		Sources: sources,
		Dedup:   conv.ConfigGet(cfg, "dedup", true),
	}
	if sec := conv.ConfigGetInt(cfg, "timeout", 0); sec > 0 {
		fanout.Timeout = time.Duration(sec) * time.Second
	}
	return fanout, nil
}

func buildFilter(cfg map[string]any) (pipeline.Node, error) {
	node := &filter.Node{}

	if ids := conv.SliceAnyToString(cfg["exclude_ids"]); len(ids) > 0 {
		node.Filters = append(node.Filters, &filter.Exclude{IDs: ids})
	}
	if conv.ConfigGet(cfg, "exclude_ref", false) {
		node.Filters = append(node.Filters, &filter.Exclude{ExcludeRef: true})
	}
	for _, expr := range conv.SliceAnyToString(cfg["rules"]) {
		rule, err := filter.NewRule(expr)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", expr, err)
		}
		node.Filters = append(node.Filters, rule)
	}
	return node, nil
}

package rerank

import (
	"context"

	"github.com/rushteam/shopkit/core"
	"github.com/rushteam/shopkit/pipeline"
)

// TopN 是截断 Node，用于在排序后截取前 N 个商品。
// 通常接在 rank.Preference 之后，限制最终返回数量。
//
// 示例：
//
//	p := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &recall.Preferred{...},
//	        &rank.Preference{...},
//	        &rerank.TopN{N: 8},
//	    },
//	}
type TopN struct {
	// N 要保留的商品数量。
	// N <= 0 表示不截断，返回所有商品；N 大于输入长度时也返回所有商品。
	N int
}

func (n *TopN) Name() string        { return "rerank.topn" }
func (n *TopN) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *TopN) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.N <= 0 || len(items) <= n.N {
		return items, nil
	}
	return items[:n.N], nil
}

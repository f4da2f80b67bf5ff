package recall

import (
	"context"
	"math"
	"sort"

	"github.com/rushteam/shopkit/core"
	"github.com/rushteam/shopkit/pipeline"
	"github.com/rushteam/shopkit/pkg/utils"
)

// Similar 是相似商品候选源：同类目下按价格接近程度排序。
//
// 核心思想："正在看 1000 元的手机，就推同类目里价位相近的手机"——
// 价格差升序，价格差相同时高评分优先。
//
// 没有参考商品（rctx.Ref 为 nil）时返回空：相似栏目是可选的，
// 缺少参考商品不是错误。
type Similar struct {
	Catalog *core.Catalog

	// TopK 返回数量，<=0 表示使用 DefaultTopK。
	TopK int
}

func (r *Similar) Name() string        { return "recall.similar" }
func (r *Similar) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *Similar) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *Similar) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Catalog == nil || rctx == nil || rctx.Ref == nil {
		return nil, nil
	}
	ref := rctx.Ref

	topK := r.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	cands := make([]core.Product, 0)
	for _, p := range r.Catalog.All() {
		if p.CategoryID == ref.CategoryID && p.ID != ref.ID {
			cands = append(cands, p)
		}
	}
	sort.Slice(cands, func(i, j int) bool {
		di := math.Abs(cands[i].Price - ref.Price)
		dj := math.Abs(cands[j].Price - ref.Price)
		if di != dj {
			return di < dj
		}
		if cands[i].Rating != cands[j].Rating {
			return cands[i].Rating > cands[j].Rating
		}
		return cands[i].ID < cands[j].ID
	})
	if len(cands) > topK {
		cands = cands[:topK]
	}

	out := make([]*core.Item, 0, len(cands))
	for _, p := range cands {
		it := core.NewProductItem(p)
		it.PutLabel("recall_source", utils.Label{Value: "similar", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

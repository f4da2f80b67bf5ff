package recall

import (
	"context"
	"math"
	"sort"

	"github.com/rushteam/shopkit/core"
	"github.com/rushteam/shopkit/pipeline"
	"github.com/rushteam/shopkit/pkg/utils"
)

// DefaultPriceWindow 是协同候选的默认价格邻域（|ΔPrice| 小于此值视为相近）。
const DefaultPriceWindow = 100

// Collaborative 是"看了又看"式的启发式候选源：
// 同类目、或价格落在参考商品邻域内的商品，按评分降序。
//
// 注意：这不是真正的跨用户协同信号——引擎只持有单个会话的行为，
// 这里是在同一份目录上做近邻启发，名字沿用源系统的叫法。
//
// 没有参考商品时返回空（可选栏目，不是错误）。
type Collaborative struct {
	Catalog *core.Catalog

	// PriceWindow 价格邻域宽度，0 表示使用 DefaultPriceWindow。
	PriceWindow float64

	// TopK 返回数量，<=0 表示使用 DefaultTopK。
	TopK int
}

func (r *Collaborative) Name() string        { return "recall.collaborative" }
func (r *Collaborative) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *Collaborative) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *Collaborative) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Catalog == nil || rctx == nil || rctx.Ref == nil {
		return nil, nil
	}
	ref := rctx.Ref

	window := r.PriceWindow
	if window == 0 {
		window = DefaultPriceWindow
	}
	topK := r.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	cands := make([]core.Product, 0)
	for _, p := range r.Catalog.All() {
		if p.ID == ref.ID {
			continue
		}
		if p.CategoryID == ref.CategoryID || math.Abs(p.Price-ref.Price) < window {
			cands = append(cands, p)
		}
	}
	sort.Slice(cands, func(i, j int) bool {
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
		it.Score = p.Rating
		it.PutLabel("recall_source", utils.Label{Value: "collaborative", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

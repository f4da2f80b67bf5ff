package recall

import (
	"context"
	"sort"

	"github.com/rushteam/shopkit/core"
	"github.com/rushteam/shopkit/pipeline"
	"github.com/rushteam/shopkit/pkg/utils"
)

// 热门候选的默认准入阈值。两个条件必须同时满足，
// 避免少量刷出来的高分或低分爆款混入榜单。
const (
	DefaultMinRating  = 4.5
	DefaultMinReviews = 100
)

// Trending 是热门候选源：按 Rating*ReviewCount 的口碑热度降序。
//   - 如果配置了 Store + Key，优先读取离线算好的热门榜
//     （有序集合 ZRange，生产环境由离线任务定期更新）
//   - 否则基于目录快照实时计算
//   - 阈值 MinRating / MinReviews 是命名配置，不是散落的魔法数字
//
// Trending 同时实现了 Source 和 Node 接口，可以直接在 Pipeline 中使用。
type Trending struct {
	Catalog *core.Catalog

	// Store / Key 可选：离线热门榜所在的有序集合。
	Store core.KeyValueStore
	Key   string

	// MinRating 准入评分下限（含），0 表示使用 DefaultMinRating。
	MinRating float64

	// MinReviews 准入评论数下限（不含），0 表示使用 DefaultMinReviews。
	MinReviews int

	// TopK 返回数量，<=0 表示使用 DefaultTopK。
	TopK int
}

func (r *Trending) Name() string        { return "recall.trending" }
func (r *Trending) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall。
func (r *Trending) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。
func (r *Trending) Recall(
	ctx context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Catalog == nil {
		return nil, nil
	}
	topK := r.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	// 榜单优先：离线分数已经排好序，这里只做目录解析与截断。
	if r.Store != nil && r.Key != "" {
		members, err := r.Store.ZRange(ctx, r.Key, 0, int64(topK)-1)
		if err == nil && len(members) > 0 {
			out := make([]*core.Item, 0, topK)
			for _, id := range members {
				p, ok := r.Catalog.ByID(id)
				if !ok {
					continue // 商品可能已下架
				}
				out = append(out, r.wrap(p, "board"))
				if len(out) == topK {
					break
				}
			}
			if len(out) > 0 {
				return out, nil
			}
		}
	}

	// 实时计算：准入过滤 -> 热度降序 -> 截断。
	minRating := r.MinRating
	if minRating == 0 {
		minRating = DefaultMinRating
	}
	minReviews := r.MinReviews
	if minReviews == 0 {
		minReviews = DefaultMinReviews
	}

	cands := make([]core.Product, 0)
	for _, p := range r.Catalog.All() {
		if p.Rating >= minRating && p.ReviewCount > minReviews {
			cands = append(cands, p)
		}
	}
	sort.Slice(cands, func(i, j int) bool {
		hi := cands[i].Rating * float64(cands[i].ReviewCount)
		hj := cands[j].Rating * float64(cands[j].ReviewCount)
		if hi != hj {
			return hi > hj
		}
		return cands[i].ID < cands[j].ID // 热度相同按 ID，保证结果确定
	})
	if len(cands) > topK {
		cands = cands[:topK]
	}

	out := make([]*core.Item, 0, len(cands))
	for _, p := range cands {
		it := r.wrap(p, "catalog")
		it.Score = p.Rating * float64(p.ReviewCount)
		out = append(out, it)
	}
	return out, nil
}

func (r *Trending) wrap(p core.Product, from string) *core.Item {
	it := core.NewProductItem(p)
	it.PutLabel("recall_source", utils.Label{Value: "trending", Source: "recall"})
	it.PutLabel("trending_from", utils.Label{Value: from, Source: "recall"})
	return it
}

package recall

import (
	"context"

	"github.com/rushteam/shopkit/core"
	"github.com/rushteam/shopkit/pipeline"
	"github.com/rushteam/shopkit/pkg/utils"
)

// Recent 把会话的最近浏览历史解析回目录快照。
//   - 保持浏览时的新近顺序（最近的在前），不重新排序
//   - 目录中已不存在的 ID（商品下架）静默跳过
//   - 给了参考商品时，跳过参考商品自身（详情页不给自己推自己）
type Recent struct {
	Catalog *core.Catalog
	History HistoryStore

	// TopK 返回数量，<=0 表示使用 DefaultTopK。
	TopK int
}

func (r *Recent) Name() string        { return "recall.recent" }
func (r *Recent) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *Recent) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *Recent) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Catalog == nil || r.History == nil {
		return nil, nil
	}

	ids, err := r.History.RecentlyViewed(ctx)
	if err != nil || len(ids) == 0 {
		// 历史读不到按无历史处理，最近浏览栏目直接缺席。
		return nil, nil
	}

	var refID string
	if rctx != nil && rctx.Ref != nil {
		refID = rctx.Ref.ID
	}

	topK := r.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	out := make([]*core.Item, 0, topK)
	for _, id := range ids {
		if id == refID {
			continue
		}
		p, ok := r.Catalog.ByID(id)
		if !ok {
			continue
		}
		it := core.NewProductItem(p)
		it.PutLabel("recall_source", utils.Label{Value: "recently_viewed", Source: "recall"})
		out = append(out, it)
		if len(out) == topK {
			break
		}
	}
	return out, nil
}

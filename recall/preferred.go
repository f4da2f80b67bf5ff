package recall

import (
	"context"

	"github.com/rushteam/shopkit/core"
	"github.com/rushteam/shopkit/pipeline"
	"github.com/rushteam/shopkit/pkg/utils"
)

// Preferred 是个性化推荐的暖启动候选源：从目录快照中取出属于
// 偏好类目的商品，交给 rank.Preference 打分排序。
//
// Model 为空或没有类目信号（冷启动）时返回空，由上层回退到热门。
// 候选保持目录顺序，排序是 rank 阶段的职责。
type Preferred struct {
	Catalog *core.Catalog

	// Model 是当前快照推导出的偏好模型。
	Model *core.PreferenceModel

	// TopK <=0 表示不截断，交给后续 rerank.TopN。
	TopK int
}

func (r *Preferred) Name() string        { return "recall.preferred" }
func (r *Preferred) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *Preferred) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *Preferred) Recall(
	_ context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Catalog == nil || r.Model.IsCold() {
		return nil, nil
	}

	out := make([]*core.Item, 0)
	for _, p := range r.Catalog.All() {
		if !r.Model.Prefers(p.Category) {
			continue
		}
		it := core.NewProductItem(p)
		it.PutLabel("recall_source", utils.Label{Value: "preferred", Source: "recall"})
		out = append(out, it)
		if r.TopK > 0 && len(out) == r.TopK {
			break
		}
	}
	return out, nil
}

package rank

import (
	"context"
	"math"
	"sort"

	"github.com/rushteam/shopkit/core"
	"github.com/rushteam/shopkit/pipeline"
	"github.com/rushteam/shopkit/pkg/utils"
)

// PriceScale 是价格接近度的归一化尺度：与均价相差 PriceScale
// 视为一个满分单位的距离。
const PriceScale = 1000

// Preference 是偏好打分 Node：按会话的偏好模型给候选打分并降序排序。
//
//	score = Rating/5 + (1 - |Price-AveragePrice|/PriceScale)
//
// 价格项沿用源系统的公式，向下不封底：价格离均价超过 PriceScale 的
// 商品会得到一个可能压过评分项的负分。这是刻意保留的兼容行为；
// 需要封底的部署显式设置 PriceFloor（例如 -1）。
//
// - 写入 labels：rank_model
// - 更新 item.Score 并按分数降序排序
type Preference struct {
	// Model 是当前快照推导出的偏好模型。为 nil 时不打分，原样透传。
	Model *core.PreferenceModel

	// PriceFloor 可选的价格项下限。nil 表示不封底（兼容默认）。
	PriceFloor *float64
}

func (n *Preference) Name() string        { return "rank.preference" }
func (n *Preference) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *Preference) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Model == nil || len(items) == 0 {
		return items, nil
	}

	for _, it := range items {
		if it == nil || it.Product == nil {
			continue
		}
		it.Score = n.score(it.Product)
		it.PutLabel("rank_model", utils.Label{Value: "preference", Source: "rank"})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i] == nil || items[i].Product == nil {
			return false
		}
		if items[j] == nil || items[j].Product == nil {
			return true
		}
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (n *Preference) score(p *core.Product) float64 {
	ratingScore := p.Rating / 5
	priceScore := 1 - math.Abs(p.Price-n.Model.AveragePrice)/PriceScale
	if n.PriceFloor != nil && priceScore < *n.PriceFloor {
		priceScore = *n.PriceFloor
	}
	return ratingScore + priceScore
}

// FloorOf 是 PriceFloor 的取值辅助，便于从配置里直接构造。
func FloorOf(v float64) *float64 { return &v }

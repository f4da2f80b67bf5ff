package filter

import (
	"context"

	"github.com/rushteam/shopkit/core"
)

// Exclude 过滤显式排除的商品：调用方给出的 ID 列表，
// 以及（可选）上下文里的参考商品自身——详情页不给自己推自己。
type Exclude struct {
	// IDs 是要排除的商品 ID 列表。
	IDs []string

	// ExcludeRef 为 true 时同时排除 rctx.Ref。
	ExcludeRef bool
}

func (f *Exclude) Name() string { return "filter.exclude" }

func (f *Exclude) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if f.ExcludeRef && rctx != nil && rctx.Ref != nil && item.ID == rctx.Ref.ID {
		return true, nil
	}
	for _, id := range f.IDs {
		if item.ID == id {
			return true, nil
		}
	}
	return false, nil
}

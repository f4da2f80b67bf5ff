package recall

import (
	"context"

	"github.com/rushteam/shopkit/core"
)

// Source 表示一个可复用的候选生成器（热门/相似/最近浏览/协同 ...）。
// 你可以把它理解为"可并发 fan-out 的策略单元"。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// DefaultTopK 是各候选生成器的默认返回数量。
const DefaultTopK = 4

// HistoryStore 提供当前会话的最近浏览历史（最近的在前）。
// behavior.Store 实现此接口；召回层只依赖这个窄接口，
// 方便测试时用内存假实现替换。
type HistoryStore interface {
	RecentlyViewed(ctx context.Context) ([]string, error)
}

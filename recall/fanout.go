package recall

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/shopkit/core"
	"github.com/rushteam/shopkit/pipeline"
	"github.com/rushteam/shopkit/pkg/utils"
)

// Fanout 是一个 Recall Node：并发执行多个候选源，并按 ID 去重合并。
// 用于把热门/相似/最近浏览/协同等多路候选组装成单一 feed
// （分栏目输出走 engine.BuildSections，不经过 Fanout）。
//
// 单个候选源超时或出错只会让该路缺席，不会中断其他源——
// 推荐宁可少一路，不可整页失败。
type Fanout struct {
	Sources []Source

	// Timeout 是单个候选源的超时时间，0 表示不限制。
	Timeout time.Duration

	// Dedup 为 true 时按 ID 去重，保留先出现的（Sources 顺序即优先级）。
	Dedup bool
}

func (n *Fanout) Name() string        { return "recall.fanout" }
func (n *Fanout) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Fanout) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}

	results := make([][]*core.Item, len(n.Sources))
	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)

	for i, src := range n.Sources {
		idx, s := i, src
		eg.Go(func() error {
			recallCtx := egCtx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				recallCtx, cancel = context.WithTimeout(egCtx, n.Timeout)
				defer cancel()
			}

			items, err := s.Recall(recallCtx, rctx)
			if err != nil {
				return nil // 出错只缺席，不中断其他源
			}
			for _, it := range items {
				if it == nil {
					continue
				}
				it.PutLabel("recall_source", utils.Label{Value: s.Name(), Source: "recall"})
			}
			mu.Lock()
			results[idx] = items
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// 按 Sources 顺序拼接，保证输出确定；去重保留先出现的。
	out := make([]*core.Item, 0)
	seen := make(map[string]*core.Item)
	for _, items := range results {
		for _, it := range items {
			if it == nil {
				continue
			}
			if n.Dedup {
				if old, ok := seen[it.ID]; ok {
					for k, v := range it.Labels {
						old.PutLabel(k, v)
					}
					continue
				}
				seen[it.ID] = it
			}
			out = append(out, it)
		}
	}
	return out, nil
}

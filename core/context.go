package core

import "github.com/rushteam/shopkit/pkg/utils"

// RecommendContext 承载会话/场景/参考商品信息，贯穿整条推荐链路透传。
type RecommendContext struct {
	// SessionID 标识一个访客会话。行为存储按会话隔离，
	// 引擎不读取任何全局共享状态。
	SessionID string

	// Scene 标识推荐场景：home / detail / category 等。
	Scene string

	// Ref 是参考商品（例如正在浏览的详情页商品）。
	// Similar / Collaborative 召回依赖它；为 nil 时这两路召回返回空，
	// 对应的栏目会被编排器丢弃，而不是报错。
	Ref *Product

	// Labels 是会话级标签，可驱动整个链路行为。
	Labels map[string]utils.Label

	// Params 请求级上下文参数（过滤表达式可引用）。
	Params map[string]any
}

// PutLabel 写入会话级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取会话级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}

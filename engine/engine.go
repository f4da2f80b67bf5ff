// Package engine 是推荐编排器：把各候选源的非空结果按固定顺序组装成
// 推荐栏目，组装个性化推荐链路，并暴露埋点入口（浏览/访问/询盘）
// 供 UI 层在商品曝光、页面切换时调用。
//
// 数据单向流动：
//
//	埋点 -> behavior.Store -> 偏好模型（按需重算，不缓存）
//	     -> 候选源 / 个性化链路 -> 栏目输出 -> UI 渲染（外部）
package engine

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/shopkit/behavior"
	"github.com/rushteam/shopkit/core"
	"github.com/rushteam/shopkit/pipeline"
	"github.com/rushteam/shopkit/rank"
	"github.com/rushteam/shopkit/recall"
	"github.com/rushteam/shopkit/rerank"
)

// 栏目 key，输出顺序固定为此处的声明顺序。
const (
	SectionTrending       = "trending"
	SectionSimilar        = "similar"
	SectionRecentlyViewed = "recently-viewed"
	SectionCollaborative  = "collaborative"
)

const (
	// DefaultSectionLimit 是单个栏目的默认商品数。
	DefaultSectionLimit = 4

	// DefaultRecommendLimit 是个性化推荐的默认返回数。
	DefaultRecommendLimit = 8
)

// Section 是编排结果中的一个推荐栏目。
type Section struct {
	Key   string
	Title string
	Items []*core.Item
}

// Engine 绑定一份目录快照与一个会话的行为存储。
// 行为存储读写失败一律降级：栏目缺席或回退冷启动，绝不把错误
// 抛到渲染层——推荐引擎没有资格让页面挂掉。
type Engine struct {
	catalog  *core.Catalog
	behavior *behavior.Store

	minRating   float64
	minReviews  int
	priceWindow float64
	priceFloor  *float64

	board    core.KeyValueStore
	boardKey string

	now func() time.Time
}

// Option 配置引擎。
type Option func(*Engine)

// WithTrendingThresholds 覆盖热门候选的准入阈值。
func WithTrendingThresholds(minRating float64, minReviews int) Option {
	return func(e *Engine) {
		e.minRating = minRating
		e.minReviews = minReviews
	}
}

// WithPriceWindow 覆盖协同候选的价格邻域。
func WithPriceWindow(w float64) Option {
	return func(e *Engine) { e.priceWindow = w }
}

// WithPriceScoreFloor 给偏好打分的价格项设置下限（显式开启的兼容偏离，
// 见 rank.Preference 的说明）。
func WithPriceScoreFloor(floor float64) Option {
	return func(e *Engine) { e.priceFloor = rank.FloorOf(floor) }
}

// WithTrendingBoard 配置离线热门榜（有序集合）。
func WithTrendingBoard(store core.KeyValueStore, key string) Option {
	return func(e *Engine) {
		e.board = store
		e.boardKey = key
	}
}

// WithClock 注入时钟，测试用。
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New 创建引擎。behavior 可以为 nil（纯目录场景），此时与历史相关的
// 栏目缺席、个性化永远走冷启动回退。
func New(catalog *core.Catalog, b *behavior.Store, opts ...Option) *Engine {
	e := &Engine{
		catalog:    catalog,
		behavior:   b,
		minRating:  recall.DefaultMinRating,
		minReviews: recall.DefaultMinReviews,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BuildSections 组装推荐栏目：四路候选并发计算，空栏目被丢弃，
// 余下的按固定顺序（热门/相似/最近浏览/协同）返回。
// limit 是单个栏目的商品数上限；limit <= 0 视为无效分页输入，
// 返回空而不是报错。
func (e *Engine) BuildSections(
	ctx context.Context,
	rctx *core.RecommendContext,
	limit int,
) []Section {
	if limit <= 0 || e.catalog == nil {
		return nil
	}

	sections := []Section{
		{Key: SectionTrending, Title: "Trending Now"},
		{Key: SectionSimilar, Title: "Similar Products"},
		{Key: SectionRecentlyViewed, Title: "Recently Viewed"},
		{Key: SectionCollaborative, Title: "You May Also Like"},
	}
	sources := []recall.Source{
		e.trendingSource(limit),
		&recall.Similar{Catalog: e.catalog, TopK: limit},
		&recall.Recent{Catalog: e.catalog, History: e.history(), TopK: limit},
		&recall.Collaborative{Catalog: e.catalog, PriceWindow: e.priceWindow, TopK: limit},
	}

	// 并发执行，结果按槽位回填，输出顺序与 sections 声明一致。
	// 单路出错只让该栏目缺席。
	eg, egCtx := errgroup.WithContext(ctx)
	for i, src := range sources {
		idx, s := i, src
		eg.Go(func() error {
			items, err := s.Recall(egCtx, rctx)
			if err != nil {
				return nil
			}
			sections[idx].Items = items
			return nil
		})
	}
	_ = eg.Wait() // 每个 goroutine 都返回 nil

	out := make([]Section, 0, len(sections))
	for _, sec := range sections {
		if len(sec.Items) == 0 {
			continue
		}
		out = append(out, sec)
	}
	return out
}

// Recommend 生成个性化推荐列表。
// 冷启动（偏好模型没有类目信号）回退到 "featured 或高评分" 的
// 热门式列表；暖路径走 Preferred -> Preference -> TopN 链路。
// limit <= 0 视为无效分页输入，返回空。
func (e *Engine) Recommend(
	ctx context.Context,
	rctx *core.RecommendContext,
	limit int,
) ([]*core.Item, error) {
	if limit <= 0 || e.catalog == nil {
		return nil, nil
	}

	model := core.BuildPreferenceModel(e.catalog, e.snapshot(ctx))
	if model.IsCold() {
		return e.coldStart(limit), nil
	}

	p := &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			&recall.Preferred{Catalog: e.catalog, Model: model},
			&rank.Preference{Model: model, PriceFloor: e.priceFloor},
			&rerank.TopN{N: limit},
		},
	}
	return p.Run(ctx, rctx, nil)
}

// PreferenceModel 返回按当前行为快照新鲜推导的偏好模型。
// 每次调用都重新计算——纯投影，没有缓存，也就没有失效问题。
func (e *Engine) PreferenceModel(ctx context.Context) *core.PreferenceModel {
	return core.BuildPreferenceModel(e.catalog, e.snapshot(ctx))
}

// coldStart 是首次访客的回退列表：featured 或高评分商品按评分降序。
func (e *Engine) coldStart(limit int) []*core.Item {
	cands := make([]core.Product, 0)
	for _, p := range e.catalog.All() {
		if p.Featured || p.Rating >= e.minRating {
			cands = append(cands, p)
		}
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Rating != cands[j].Rating {
			return cands[i].Rating > cands[j].Rating
		}
		return cands[i].ID < cands[j].ID
	})
	if len(cands) > limit {
		cands = cands[:limit]
	}
	out := make([]*core.Item, 0, len(cands))
	for _, p := range cands {
		it := core.NewProductItem(p)
		it.Score = p.Rating
		out = append(out, it)
	}
	return out
}

// TrackImpression 记录一次商品曝光/浏览，UI 层在商品详情曝光时调用。
func (e *Engine) TrackImpression(ctx context.Context, productID string) error {
	if e.behavior == nil {
		return nil
	}
	return e.behavior.RecordView(ctx, productID)
}

// TrackPageVisit 记录一次页面访问，时间取当前时钟。
func (e *Engine) TrackPageVisit(ctx context.Context, path string) error {
	if e.behavior == nil {
		return nil
	}
	return e.behavior.RecordPageVisit(ctx, path, e.now())
}

// TrackEnquiry 记录一次询盘。
func (e *Engine) TrackEnquiry(ctx context.Context, productID string) error {
	if e.behavior == nil {
		return nil
	}
	return e.behavior.RecordEnquiry(ctx, behavior.Enquiry{
		ProductID: productID,
		At:        e.now().UnixMilli(),
	})
}

// ClearHistory 清空会话的全部行为数据（隐私重置入口）。幂等。
func (e *Engine) ClearHistory(ctx context.Context) error {
	if e.behavior == nil {
		return nil
	}
	return e.behavior.Clear(ctx)
}

func (e *Engine) trendingSource(limit int) *recall.Trending {
	return &recall.Trending{
		Catalog:    e.catalog,
		Store:      e.board,
		Key:        e.boardKey,
		MinRating:  e.minRating,
		MinReviews: e.minReviews,
		TopK:       limit,
	}
}

func (e *Engine) history() recall.HistoryStore {
	if e.behavior == nil {
		return nil
	}
	return e.behavior
}

// snapshot 读取行为快照；存储不可用时按空快照处理（降级为冷启动）。
func (e *Engine) snapshot(ctx context.Context) *core.BehaviorSnapshot {
	if e.behavior == nil {
		return &core.BehaviorSnapshot{}
	}
	snap, err := e.behavior.Snapshot(ctx)
	if err != nil || snap == nil {
		return &core.BehaviorSnapshot{}
	}
	return snap
}

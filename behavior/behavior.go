// Package behavior 实现会话维度的行为存储：最近浏览、页面访问、询盘记录。
// 这是引擎唯一的可变状态，所有推荐计算都只消费它的只读快照。
package behavior

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rushteam/shopkit/core"
)

// DefaultCapacity 是 RecentlyViewed 的默认容量上限。
const DefaultCapacity = 10

// 三条逻辑记录的 key 名，与源系统的存储键保持一致。
const (
	keyRecentlyViewed = "recentlyViewed"
	keyPageViews      = "pageViews"
	keyEnquiries      = "userEnquiries"
)

// Enquiry 是一次询盘动作的记录。内容对引擎透明，偏好统计只消费条数。
type Enquiry struct {
	ProductID string `json:"productId,omitempty"`
	At        int64  `json:"at"` // Unix 毫秒
}

// Store 是单个会话（session）的行为存储。
//
// 设计要点：
//   - 按会话显式实例化，注入 core.Store 作为持久化后端，没有任何
//     全局共享状态，多会话/测试都可独立使用
//   - 写操作由实例级互斥锁串行化成单一全序，保证 RecentlyViewed 的
//     提升/淘汰语义在并发 RecordView 下不会丢失更新
//   - 读取走 Snapshot，返回的是解码出来的副本，天然不撕裂
//   - 持久化值损坏（JSON 解码失败）按空记录处理，行为数据的问题
//     永远不应让宿主页面崩溃
type Store struct {
	mu        sync.Mutex
	store     core.Store
	sessionID string
	capacity  int
	ttl       int // 秒；0 表示不过期
}

// Option 配置行为存储。
type Option func(*Store)

// WithCapacity 调整 RecentlyViewed 容量（缺省 DefaultCapacity）。
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithTTL 设置三条记录的过期秒数，用于自动清理不再回访的会话。
func WithTTL(seconds int) Option {
	return func(s *Store) {
		if seconds > 0 {
			s.ttl = seconds
		}
	}
}

// New 创建会话行为存储。
func New(st core.Store, sessionID string, opts ...Option) *Store {
	s := &Store{
		store:     st,
		sessionID: sessionID,
		capacity:  DefaultCapacity,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SessionID 返回绑定的会话 ID。
func (s *Store) SessionID() string { return s.sessionID }

func (s *Store) key(name string) string {
	return "behavior:" + s.sessionID + ":" + name
}

// RecordView 记录一次商品浏览。
// 语义：已在列表中的 ID 先移除旧位置再插入队首（promote-on-reaccess），
// 不产生重复；超出容量时淘汰队尾（最早进入的 ID）。
func (s *Store) RecordView(ctx context.Context, productID string) error {
	if productID == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.loadRecentlyViewed(ctx)
	out := make([]string, 0, len(ids)+1)
	out = append(out, productID)
	for _, id := range ids {
		if id == productID {
			continue
		}
		out = append(out, id)
	}
	if len(out) > s.capacity {
		out = out[:s.capacity]
	}
	return s.save(ctx, keyRecentlyViewed, out)
}

// RecordPageVisit 记录一次页面访问：计数加一，
// LastVisit 取历史最大值与本次时间戳中的较大者。
func (s *Store) RecordPageVisit(ctx context.Context, path string, at time.Time) error {
	if path == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	views := s.loadPageViews(ctx)
	st := views[path]
	st.Count++
	if ms := at.UnixMilli(); ms > st.LastVisit {
		st.LastVisit = ms
	}
	views[path] = st
	return s.save(ctx, keyPageViews, views)
}

// RecordEnquiry 追加一条询盘记录。
func (s *Store) RecordEnquiry(ctx context.Context, e Enquiry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.At == 0 {
		e.At = time.Now().UnixMilli()
	}
	list := s.loadEnquiries(ctx)
	list = append(list, e)
	return s.save(ctx, keyEnquiries, list)
}

// Clear 清空三条记录，用于"清除我的数据"等隐私重置入口。幂等。
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for _, name := range []string{keyRecentlyViewed, keyPageViews, keyEnquiries} {
		if err := s.store.Delete(ctx, s.key(name)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Snapshot 返回当前状态的一致性只读快照。
// 三条记录用 BatchGet 一次取齐；任何一条损坏都按空记录处理。
func (s *Store) Snapshot(ctx context.Context) (*core.BehaviorSnapshot, error) {
	keys := []string{
		s.key(keyRecentlyViewed),
		s.key(keyPageViews),
		s.key(keyEnquiries),
	}
	vals, err := s.store.BatchGet(ctx, keys)
	if err != nil {
		return nil, err
	}

	snap := &core.BehaviorSnapshot{
		PageViews: make(map[string]core.PageStat),
	}
	if data, ok := vals[keys[0]]; ok {
		var ids []string
		if json.Unmarshal(data, &ids) == nil {
			snap.RecentlyViewed = ids
		}
	}
	if data, ok := vals[keys[1]]; ok {
		var views map[string]core.PageStat
		if json.Unmarshal(data, &views) == nil && views != nil {
			snap.PageViews = views
		}
	}
	if data, ok := vals[keys[2]]; ok {
		var list []Enquiry
		if json.Unmarshal(data, &list) == nil {
			snap.Enquiries = len(list)
		}
	}
	return snap, nil
}

// RecentlyViewed 返回最近浏览的商品 ID（最近的在前）。
// 实现 recall.HistoryStore，供最近浏览召回直接消费。
func (s *Store) RecentlyViewed(ctx context.Context) ([]string, error) {
	return s.loadRecentlyViewed(ctx), nil
}

// load* 系列：读取并解码单条记录。key 不存在与解码失败都返回
// 空记录——损坏的行为数据只能丢弃，没有恢复路径。

func (s *Store) loadRecentlyViewed(ctx context.Context) []string {
	data, err := s.store.Get(ctx, s.key(keyRecentlyViewed))
	if err != nil {
		return nil
	}
	var ids []string
	if json.Unmarshal(data, &ids) != nil {
		return nil
	}
	return ids
}

func (s *Store) loadPageViews(ctx context.Context) map[string]core.PageStat {
	views := make(map[string]core.PageStat)
	data, err := s.store.Get(ctx, s.key(keyPageViews))
	if err != nil {
		return views
	}
	var parsed map[string]core.PageStat
	if json.Unmarshal(data, &parsed) == nil && parsed != nil {
		return parsed
	}
	return views
}

func (s *Store) loadEnquiries(ctx context.Context) []Enquiry {
	data, err := s.store.Get(ctx, s.key(keyEnquiries))
	if err != nil {
		return nil
	}
	var list []Enquiry
	if json.Unmarshal(data, &list) != nil {
		return nil
	}
	return list
}

func (s *Store) save(ctx context.Context, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if s.ttl > 0 {
		return s.store.Set(ctx, s.key(name), data, s.ttl)
	}
	return s.store.Set(ctx, s.key(name), data)
}

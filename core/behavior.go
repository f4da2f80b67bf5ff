package core

// PageStat 记录单个页面路径的访问统计。
// Count 单调不减；LastVisit 始终保存该路径出现过的最大时间戳（Unix 毫秒）。
type PageStat struct {
	Count     int   `json:"count"`
	LastVisit int64 `json:"lastVisit"`
}

// BehaviorSnapshot 是行为存储在某一时刻的一致性只读快照。
// 偏好模型与各候选源只消费快照，不直接接触底层存储，
// 因此读取永远不会看到写到一半的状态。
type BehaviorSnapshot struct {
	// RecentlyViewed 是最近浏览的商品 ID，最近的在前，去重且有界。
	RecentlyViewed []string

	// PageViews 是页面路径到访问统计的映射。
	// 路径不在映射中表示从未访问过。
	PageViews map[string]PageStat

	// Enquiries 是询盘次数。询盘内容对引擎透明，只消费条数。
	Enquiries int
}

// LastActivity 返回所有页面访问中的最大时间戳；没有任何访问时为 0。
func (s *BehaviorSnapshot) LastActivity() int64 {
	if s == nil {
		return 0
	}
	var max int64
	for _, st := range s.PageViews {
		if st.LastVisit > max {
			max = st.LastVisit
		}
	}
	return max
}

// TotalViews 返回所有页面的累计访问次数。
func (s *BehaviorSnapshot) TotalViews() int {
	if s == nil {
		return 0
	}
	total := 0
	for _, st := range s.PageViews {
		total += st.Count
	}
	return total
}

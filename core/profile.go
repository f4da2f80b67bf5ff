package core

import "sort"

// PreferenceModel 是从行为快照推导出的会话偏好摘要。
//
// 一句话定义：偏好模型 = 个性化推荐的"类目信号 + 价格锚点"
//
// 设计要点：纯投影。每次需要时从当前快照重新计算，永不持久化、
// 永不缓存，从根上杜绝 staleness 问题。计算量是 RecentlyViewed
// 的长度（上限 10），没有缓存的必要。
type PreferenceModel struct {
	// PreferredCategories 按出现频次降序；频次相同时按类目在
	// RecentlyViewed 中首次出现的顺序（历史本身按新近排序，
	// 所以更近看过的类目赢得并列）。
	PreferredCategories []string

	// AveragePrice 是已解析商品价格的算术平均；
	// 一个都解析不到时为 0，即冷启动信号。
	AveragePrice float64

	TotalViews     int
	TotalEnquiries int

	// LastActivity 是页面访问的最大时间戳（Unix 毫秒），无访问为 0。
	LastActivity int64
}

// IsCold 表示冷启动：没有任何类目偏好信号，个性化推荐应回退到热门。
func (m *PreferenceModel) IsCold() bool {
	return m == nil || len(m.PreferredCategories) == 0
}

// BuildPreferenceModel 把 RecentlyViewed 逐一解析到目录快照并汇总偏好。
// 目录中已不存在的 ID（商品下架）静默跳过，不是错误。
func BuildPreferenceModel(catalog *Catalog, snap *BehaviorSnapshot) *PreferenceModel {
	m := &PreferenceModel{}
	if snap == nil {
		return m
	}
	m.TotalViews = snap.TotalViews()
	m.TotalEnquiries = snap.Enquiries
	m.LastActivity = snap.LastActivity()
	if catalog == nil {
		return m
	}

	freq := make(map[string]int)
	firstSeen := make(map[string]int)
	var priceSum float64
	resolved := 0
	for _, id := range snap.RecentlyViewed {
		p, ok := catalog.ByID(id)
		if !ok {
			continue
		}
		if _, seen := firstSeen[p.Category]; !seen {
			firstSeen[p.Category] = len(firstSeen)
		}
		freq[p.Category]++
		priceSum += p.Price
		resolved++
	}
	if resolved > 0 {
		m.AveragePrice = priceSum / float64(resolved)
	}

	categories := make([]string, 0, len(freq))
	for c := range freq {
		categories = append(categories, c)
	}
	sort.SliceStable(categories, func(i, j int) bool {
		if freq[categories[i]] != freq[categories[j]] {
			return freq[categories[i]] > freq[categories[j]]
		}
		return firstSeen[categories[i]] < firstSeen[categories[j]]
	})
	m.PreferredCategories = categories
	return m
}

// Prefers 判断类目是否在偏好列表中。
func (m *PreferenceModel) Prefers(category string) bool {
	if m == nil {
		return false
	}
	for _, c := range m.PreferredCategories {
		if c == category {
			return true
		}
	}
	return false
}

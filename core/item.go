package core

import "github.com/rushteam/shopkit/pkg/utils"

// Item 是推荐链路中的统一承载结构：商品引用、分数、标签。
// Labels 用于解释与策略驱动；Score 用于排序决策。
type Item struct {
	ID      string
	Score   float64
	Product *Product
	Labels  map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:     id,
		Score:  0,
		Labels: make(map[string]utils.Label),
	}
}

// NewProductItem 从目录商品构建 Item。商品会被拷贝一份，
// 之后对 Item 的任何操作都不会触碰目录快照。
func NewProductItem(p Product) *Item {
	it := NewItem(p.ID)
	cp := p
	it.Product = &cp
	return it
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// Products 把 Item 列表还原成商品列表，跳过没有商品引用的 Item。
// 供只关心商品本身的 UI 层使用。
func Products(items []*Item) []Product {
	out := make([]Product, 0, len(items))
	for _, it := range items {
		if it == nil || it.Product == nil {
			continue
		}
		out = append(out, *it.Product)
	}
	return out
}

package core

// Product 是商品目录中的一条记录。对引擎而言严格只读：
// 引擎只消费目录快照，永远不会修改商品数据本身。
type Product struct {
	ID          string
	Name        string
	Category    string // 展示类目，例如 "Electronics"
	CategoryID  string // 类目 ID，相似/协同召回按此匹配
	Price       float64
	Rating      float64 // 0-5
	ReviewCount int
	Featured    bool
	OnSale      bool
}

// Catalog 是某一时刻的商品目录快照（Catalog Snapshot）。
// 由宿主应用构建后传入，引擎内部不做任何写操作，因此可以被
// 多个 goroutine 并发读取。同一快照内 ID 唯一；构建时遇到重复 ID
// 以后出现者为准。
type Catalog struct {
	products []Product
	index    map[string]int
}

// NewCatalog 从商品列表构建目录快照。传入的切片会被拷贝，
// 调用方之后修改原切片不影响快照。
func NewCatalog(products []Product) *Catalog {
	c := &Catalog{
		products: make([]Product, len(products)),
		index:    make(map[string]int, len(products)),
	}
	copy(c.products, products)
	for i, p := range c.products {
		c.index[p.ID] = i
	}
	return c
}

// All 返回快照内的全部商品，顺序与构建时一致。
// 返回的切片归快照所有，调用方不应修改。
func (c *Catalog) All() []Product {
	if c == nil {
		return nil
	}
	return c.products
}

// ByID 按 ID 查找商品。历史记录中的 ID 可能已经从目录下架，
// 查不到不是错误，调用方应静默跳过。
func (c *Catalog) ByID(id string) (Product, bool) {
	if c == nil {
		return Product{}, false
	}
	i, ok := c.index[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// Len 返回快照内的商品数量。
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.products)
}

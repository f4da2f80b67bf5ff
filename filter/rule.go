package filter

import (
	"context"
	"sync"

	"github.com/rushteam/shopkit/core"
	"github.com/rushteam/shopkit/pkg/dsl"
)

// Rule 是基于 CEL 表达式的规则过滤器：表达式返回 true 的商品被保留。
// 规则做成数据（配置下发），业务侧不用改代码就能调整准入条件。
//
// 示例表达式：
//   - `product.on_sale`                          只保留促销商品
//   - `product.price < 500.0`                    价格上限
//   - `product.rating >= 4.0 && !product.featured` 组合条件
type Rule struct {
	// Expr 是 CEL 表达式，求值结果必须是 bool。
	Expr string

	once sync.Once
	prg  *dsl.Program
	err  error
}

// NewRule 创建规则过滤器并立即编译表达式，编译错误提前暴露。
func NewRule(expr string) (*Rule, error) {
	r := &Rule{Expr: expr}
	if _, err := r.program(); err != nil {
		return nil, err
	}
	return r, nil
}

func (f *Rule) Name() string { return "filter.rule" }

func (f *Rule) program() (*dsl.Program, error) {
	f.once.Do(func() {
		f.prg, f.err = dsl.Compile(f.Expr)
	})
	return f.prg, f.err
}

func (f *Rule) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if f.Expr == "" {
		return false, nil
	}
	prg, err := f.program()
	if err != nil {
		return false, err
	}
	keep, err := prg.Match(item, rctx)
	if err != nil {
		return false, err
	}
	return !keep, nil
}

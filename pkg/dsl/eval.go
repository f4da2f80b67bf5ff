// Package dsl 基于 CEL (Common Expression Language) 实现规则表达式求值，
// 用于把过滤规则做成数据驱动的配置，而不是写死在代码里。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/shopkit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("item", cel.DynType),
		cel.Variable("product", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("rctx", cel.DynType),
	)
}

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Program 是编译好的规则表达式，可多次求值，线程安全。
//
// 表达式语法（CEL 标准语法）：
//   - 商品字段：product.price < 500 / product.on_sale / product.category_id == "c1"
//   - 链路信息：item.score > 0.7 / label.recall_source.value == "trending"
//   - 上下文：rctx.scene == "detail" / rctx.params.channel == "app"
//   - 逻辑组合：product.rating >= 4.0 && product.price < 1000
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式。编译一次之后可反复 Match，避免每次求值都走编译。
func Compile(expr string) (*Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// Match 对单个 Item 求值，返回布尔结果。
// 表达式必须返回 bool，否则视为错误。
func (p *Program) Match(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := p.prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", p.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression %q must return boolean, got %T", p.expr, out.Value())
	}
	return result, nil
}

// Expr 返回原始表达式文本。
func (p *Program) Expr() string { return p.expr }

// buildInput 构建 CEL 表达式的输入数据。
// 注意：CEL 访问不存在的 key 会报错，缺省值一律填 null/空。
func buildInput(item *core.Item, rctx *core.RecommendContext) map[string]any {
	labels := make(map[string]any)
	var itemMap map[string]any
	var productMap map[string]any

	if item != nil {
		for k, v := range item.Labels {
			labels[k] = map[string]any{
				"value":  v.Value,
				"source": v.Source,
			}
		}
		itemMap = map[string]any{
			"id":     item.ID,
			"score":  item.Score,
			"labels": labels,
		}
		if item.Product != nil {
			p := item.Product
			productMap = map[string]any{
				"id":           p.ID,
				"name":         p.Name,
				"category":     p.Category,
				"category_id":  p.CategoryID,
				"price":        p.Price,
				"rating":       p.Rating,
				"review_count": p.ReviewCount,
				"featured":     p.Featured,
				"on_sale":      p.OnSale,
			}
		}
	}

	rctxMap := map[string]any{
		"session_id": "",
		"scene":      "",
		"params":     map[string]any{},
	}
	if rctx != nil {
		rctxMap["session_id"] = rctx.SessionID
		rctxMap["scene"] = rctx.Scene
		if rctx.Params != nil {
			rctxMap["params"] = rctx.Params
		}
	}

	return map[string]any{
		"item":    itemMap,
		"product": productMap,
		"label":   labels,
		"rctx":    rctxMap,
	}
}

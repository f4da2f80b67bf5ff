// Package store 提供 core.Store 的具体实现。
// 注意：此包只包含实现，接口定义在 core 包（领域层定义接口，
// 基础设施层实现接口）。
//
// 示例：
//
//	var st store.Store = store.NewMemoryStore()
//	var kv store.KeyValueStore = store.NewMemoryStore()
package store

import "github.com/rushteam/shopkit/core"

// 轻量别名：便于直接 import "store" 使用，不必再 import core。
type Store = core.Store
type KeyValueStore = core.KeyValueStore

// ErrNotFound 表示 key 不存在。
var ErrNotFound = core.ErrStoreNotFound

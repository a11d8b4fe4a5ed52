package guard

import (
	"context"

	"go.uber.org/atomic"
)

// JobGuard 任务互斥守卫
// 同一任务同一时刻只允许一次执行，重复触发应跳过而不是排队
type JobGuard interface {
	// TryAcquire 尝试获取执行权，返回 false 表示已有同名任务在执行
	TryAcquire(ctx context.Context, job string) (bool, error)
	// Release 释放执行权
	Release(ctx context.Context, job string) error
}

// RunGuard 进程内单飞守卫
// 仅保护单进程内的并发触发，多实例部署需改用 RedisJobLease
type RunGuard struct {
	running *atomic.Bool
}

// NewRunGuard 创建进程内守卫
func NewRunGuard() *RunGuard {
	return &RunGuard{running: atomic.NewBool(false)}
}

// TryAcquire 尝试获取执行权
func (g *RunGuard) TryAcquire(_ context.Context, _ string) (bool, error) {
	return g.running.CompareAndSwap(false, true), nil
}

// Release 释放执行权
func (g *RunGuard) Release(_ context.Context, _ string) error {
	g.running.Store(false)
	return nil
}

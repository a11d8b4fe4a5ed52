package guard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// 只有持有者能释放租约
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisJobLease 基于 Redis 的任务租约
// 多实例部署时按任务名互斥，租约到期自动失效，避免实例崩溃后永久持锁
type RedisJobLease struct {
	client *redis.Client
	ttl    time.Duration
	owner  string
}

// NewRedisJobLease 创建 Redis 任务租约
func NewRedisJobLease(client *redis.Client, ttl time.Duration) *RedisJobLease {
	return &RedisJobLease{
		client: client,
		ttl:    ttl,
		owner:  uuid.NewString(),
	}
}

// TryAcquire 尝试获取租约
func (l *RedisJobLease) TryAcquire(ctx context.Context, job string) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(job), l.owner, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lease for job %s: %w", job, err)
	}
	return ok, nil
}

// Release 释放租约，只有当前持有者的释放才生效
func (l *RedisJobLease) Release(ctx context.Context, job string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key(job)}, l.owner).Err(); err != nil {
		return fmt.Errorf("failed to release lease for job %s: %w", job, err)
	}
	return nil
}

func (l *RedisJobLease) key(job string) string {
	return "lms:job:" + job
}

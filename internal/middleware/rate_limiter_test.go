package middleware

import (
	"testing"
	"time"
)

func TestSyncRateLimiter_CooldownAfterCheck(t *testing.T) {
	limiter := &SyncRateLimiter{}
	key := GlobalSyncKey(SyncTypeRocket)

	if res := limiter.Check(key, time.Minute); !res.Allowed {
		t.Fatal("首次检查应放行")
	}
	res := limiter.Check(key, time.Minute)
	if res.Allowed {
		t.Fatal("冷却期内应拒绝")
	}
	if res.RetryAfter <= 0 {
		t.Errorf("RetryAfter = %v, 应为正值", res.RetryAfter)
	}
}

func TestSyncRateLimiter_CheckOnlyDoesNotConsume(t *testing.T) {
	limiter := &SyncRateLimiter{}
	key := AccountSyncKey(1, SyncTypeChunk)

	// 只读检查不应开启冷却
	if res := limiter.CheckOnly(key, time.Minute); !res.Allowed {
		t.Fatal("无记录时 CheckOnly 应放行")
	}
	if res := limiter.Check(key, time.Minute); !res.Allowed {
		t.Fatal("CheckOnly 之后首次 Check 仍应放行")
	}

	// 冷却中：CheckOnly 报拒绝但不刷新时间
	if res := limiter.CheckOnly(key, time.Minute); res.Allowed {
		t.Fatal("冷却期内 CheckOnly 应报拒绝")
	}
}

func TestSyncRateLimiter_ResetClearsCooldown(t *testing.T) {
	limiter := &SyncRateLimiter{}
	key := GlobalSyncKey(SyncTypeRevenue)

	limiter.Check(key, time.Minute)
	if res := limiter.Check(key, time.Minute); res.Allowed {
		t.Fatal("冷却期内应拒绝")
	}

	limiter.Reset(key)
	if res := limiter.Check(key, time.Minute); !res.Allowed {
		t.Fatal("Reset 后应立即放行")
	}
}

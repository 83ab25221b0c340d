package service

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"seller_ops_v1_202609/internal/model"
	"seller_ops_v1_202609/internal/repository"
	applog "seller_ops_v1_202609/pkg/logger"
	"seller_ops_v1_202609/pkg/timewindow"
)

// ==================== 测试辅助 ====================

// fakeClock 每个单元推进固定耗时的假时钟
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func setupSchedulerTest(t *testing.T, exec CellExecutor) (*gorm.DB, *BudgetScheduler, *fakeClock) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.MarketAccount{}, &model.ApiSyncLog{}); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}

	s := NewBudgetScheduler(
		repository.NewMarketAccountRepository(db),
		repository.NewApiSyncLogRepository(db),
		exec,
		applog.NewNop(),
	)

	clock := &fakeClock{t: time.Date(2026, 1, 30, 10, 0, 0, 0, timewindow.KST)}
	s.now = clock.now
	return db, s, clock
}

func testCells(n int) []SyncCell {
	day := timewindow.Day(time.Date(2026, 1, 30, 0, 0, 0, 0, timewindow.KST))
	cells := make([]SyncCell, 0, n)
	for i := 0; i < n; i++ {
		cells = append(cells, SyncCell{
			AccountID:   1,
			AccountName: "主账号",
			Day:         day,
			Status:      model.OrderStatusAccept,
		})
	}
	return cells
}

// ==================== 单元测试 ====================

func TestScheduler_AllCellsWithinBudget(t *testing.T) {
	var clock *fakeClock
	exec := func(ctx context.Context, cell SyncCell) (*ReconcileResult, error) {
		clock.advance(1 * time.Second)
		return &ReconcileResult{Inserted: 2}, nil
	}

	db, s, c := setupSchedulerTest(t, exec)
	clock = c

	summary := s.Run(context.Background(), testCells(3), 10*time.Second)

	if len(summary.Completed) != 3 {
		t.Errorf("completed = %d, want 3", len(summary.Completed))
	}
	if summary.Truncated() {
		t.Errorf("预算充足不应截断: skipped = %d", len(summary.SkippedCells))
	}
	if got := summary.Totals().Inserted; got != 6 {
		t.Errorf("totals.inserted = %d, want 6", got)
	}

	// 每次运行落一行审计
	var count int64
	db.Model(&model.ApiSyncLog{}).Count(&count)
	if count != 1 {
		t.Errorf("审计行数 = %d, want 1", count)
	}
}

func TestScheduler_BudgetExhaustedReportsSkipped(t *testing.T) {
	var clock *fakeClock
	exec := func(ctx context.Context, cell SyncCell) (*ReconcileResult, error) {
		clock.advance(4 * time.Second)
		return &ReconcileResult{Inserted: 1}, nil
	}

	db, s, c := setupSchedulerTest(t, exec)
	clock = c

	// 预算 10s、余量 2s：第 1 个单元后剩 6s，第 2 个后剩 2s，等于余量即截断
	summary := s.Run(context.Background(), testCells(5), 10*time.Second)

	if len(summary.Completed) != 2 {
		t.Errorf("completed = %d, want 2", len(summary.Completed))
	}
	if !summary.Truncated() {
		t.Fatal("预算耗尽必须标记截断")
	}
	if len(summary.SkippedCells) != 3 {
		t.Errorf("skipped = %d, want 3（剩余单元整体记为跳过）", len(summary.SkippedCells))
	}

	// 截断信息必须写进审计摘要，不允许静默
	var entry model.ApiSyncLog
	db.First(&entry)
	if entry.ErrorSummary == "" {
		t.Error("审计摘要应包含截断信息")
	}
}

func TestScheduler_CellErrorDoesNotAbortRun(t *testing.T) {
	var clock *fakeClock
	calls := 0
	exec := func(ctx context.Context, cell SyncCell) (*ReconcileResult, error) {
		clock.advance(1 * time.Second)
		calls++
		if calls == 2 {
			return nil, context.DeadlineExceeded
		}
		return &ReconcileResult{Inserted: 1}, nil
	}

	_, s, c := setupSchedulerTest(t, exec)
	clock = c

	summary := s.Run(context.Background(), testCells(3), 30*time.Second)

	if len(summary.Completed) != 3 {
		t.Errorf("completed = %d, want 3（单元失败不中止运行）", len(summary.Completed))
	}
	totals := summary.Totals()
	if totals.Inserted != 2 {
		t.Errorf("totals.inserted = %d, want 2", totals.Inserted)
	}
	if len(totals.Errors) != 1 {
		t.Errorf("errors = %d, want 1", len(totals.Errors))
	}
}

func TestScheduler_BuildCellsStatusMajorOrder(t *testing.T) {
	_, s, _ := setupSchedulerTest(t, nil)

	accounts := []model.MarketAccount{{ID: 1, Name: "A"}}
	days := timewindow.RollingDays(time.Date(2026, 1, 30, 10, 0, 0, 0, timewindow.KST), 2)

	cells := s.BuildCells(accounts, days, nil)

	want := len(model.PriorityStatuses) * 2
	if len(cells) != want {
		t.Fatalf("单元数 = %d, want %d", len(cells), want)
	}
	// 状态维在外：截断时优先保住所有日期的新订单
	if cells[0].Status != model.OrderStatusAccept || cells[1].Status != model.OrderStatusAccept {
		t.Errorf("前两个单元应都是 %s，got %s/%s",
			model.OrderStatusAccept, cells[0].Status, cells[1].Status)
	}
}

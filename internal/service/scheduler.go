package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"seller_ops_v1_202609/internal/model"
	"seller_ops_v1_202609/internal/repository"
	"seller_ops_v1_202609/pkg/timewindow"
)

// ==================== 预算调度器 ====================

// SyncCell 最小执行单元：账号 × 日 × 状态
type SyncCell struct {
	AccountID   int64
	AccountName string
	Day         timewindow.Window
	Status      string
}

func (c SyncCell) String() string {
	return fmt.Sprintf("%s/%s/%s", c.AccountName, c.Day.From.Format("2006-01-02"), c.Status)
}

// CellResult 单元执行结果
type CellResult struct {
	Cell   SyncCell
	Result *ReconcileResult
	Err    error
}

// RunSummary 一次调度运行的汇总
// SkippedCells 非空表示预算耗尽被截断，必须对外可见，不允许静默丢弃
type RunSummary struct {
	RunID        string
	Completed    []CellResult
	SkippedCells []SyncCell
	Elapsed      time.Duration
}

// Truncated 是否因预算截断
func (s *RunSummary) Truncated() bool {
	return len(s.SkippedCells) > 0
}

// Totals 汇总所有已完成单元
func (s *RunSummary) Totals() *ReconcileResult {
	total := &ReconcileResult{}
	for _, cr := range s.Completed {
		if cr.Err != nil {
			total.Errors = append(total.Errors, fmt.Sprintf("%s: %v", cr.Cell, cr.Err))
			continue
		}
		total.Merge(cr.Result)
	}
	return total
}

// CellExecutor 执行单个单元，测试时可替换
type CellExecutor func(ctx context.Context, cell SyncCell) (*ReconcileResult, error)

// BudgetScheduler 预算内调度器
// cron 周期和 HTTP 请求的可用时间都有限，单元按优先级顺序执行，
// 每个单元开始前检查剩余预算，不够就把剩余单元整体记为跳过
type BudgetScheduler struct {
	accountRepo repository.MarketAccountRepository
	syncLogRepo repository.ApiSyncLogRepository
	exec        CellExecutor
	log         *zap.SugaredLogger

	// 测试注入时钟
	now func() time.Time
	// 预估单元耗时，剩余预算低于此值即截断
	cellMargin time.Duration
}

// NewBudgetScheduler 创建调度器
func NewBudgetScheduler(
	accountRepo repository.MarketAccountRepository,
	syncLogRepo repository.ApiSyncLogRepository,
	exec CellExecutor,
	log *zap.SugaredLogger,
) *BudgetScheduler {
	return &BudgetScheduler{
		accountRepo: accountRepo,
		syncLogRepo: syncLogRepo,
		exec:        exec,
		log:         log,
		now:         time.Now,
		cellMargin:  2 * time.Second,
	}
}

// BuildCells 展开账号 × 日 × 状态的单元矩阵
// 状态维在外、日期维在内：预算截断时优先保住所有日期的新订单状态
func (s *BudgetScheduler) BuildCells(accounts []model.MarketAccount, days []timewindow.Window, statuses []string) []SyncCell {
	if len(statuses) == 0 {
		statuses = model.PriorityStatuses
	}

	cells := make([]SyncCell, 0, len(accounts)*len(days)*len(statuses))
	for _, status := range statuses {
		for _, day := range days {
			for i := range accounts {
				cells = append(cells, SyncCell{
					AccountID:   accounts[i].ID,
					AccountName: accounts[i].Name,
					Day:         day,
					Status:      status,
				})
			}
		}
	}
	return cells
}

// Run 在预算内顺序执行单元
func (s *BudgetScheduler) Run(ctx context.Context, cells []SyncCell, budget time.Duration) *RunSummary {
	summary := &RunSummary{RunID: uuid.NewString()}
	started := s.now()
	deadline := started.Add(budget)

	for i, cell := range cells {
		// 剩余恰好等于安全余量时也截断：余量是下界，不是可用预算
		remaining := deadline.Sub(s.now())
		if remaining <= s.cellMargin || ctx.Err() != nil {
			summary.SkippedCells = append(summary.SkippedCells, cells[i:]...)
			break
		}

		result, err := s.exec(ctx, cell)
		cr := CellResult{Cell: cell, Result: result, Err: err}
		summary.Completed = append(summary.Completed, cr)
		if err != nil {
			// 单元失败不中止运行，其余单元照常执行
			s.log.Warnw("同步单元失败", "cell", cell.String(), "err", err)
		}
	}

	summary.Elapsed = s.now().Sub(started)

	if summary.Truncated() {
		s.log.Warnw("预算耗尽，剩余单元跳过",
			"run_id", summary.RunID,
			"completed", len(summary.Completed),
			"skipped", len(summary.SkippedCells))
	}

	s.writeRunLog(ctx, summary)
	return summary
}

// RunRolling 滚动近 n 天的标准同步入口（cron 与 HTTP 共用）
func (s *BudgetScheduler) RunRolling(ctx context.Context, rollingDays int, budget time.Duration) (*RunSummary, error) {
	accounts, err := s.accountRepo.ListActive(ctx, model.MarketplaceOpenMarket)
	if err != nil {
		return nil, fmt.Errorf("获取账号失败: %w", err)
	}

	days := timewindow.RollingDays(s.now(), rollingDays)
	cells := s.BuildCells(accounts, days, model.PriorityStatuses)
	return s.Run(ctx, cells, budget), nil
}

// RunDay 指定单日 × 单状态的手工补偿入口
func (s *BudgetScheduler) RunDay(ctx context.Context, date time.Time, status string, budget time.Duration) (*RunSummary, error) {
	accounts, err := s.accountRepo.ListActive(ctx, model.MarketplaceOpenMarket)
	if err != nil {
		return nil, fmt.Errorf("获取账号失败: %w", err)
	}

	statuses := model.PriorityStatuses
	if status != "" {
		statuses = []string{status}
	}
	cells := s.BuildCells(accounts, []timewindow.Window{timewindow.Day(date)}, statuses)
	return s.Run(ctx, cells, budget), nil
}

func (s *BudgetScheduler) writeRunLog(ctx context.Context, summary *RunSummary) {
	totals := summary.Totals()
	from, to := runWindowBounds(summary)

	entry := &model.ApiSyncLog{
		RunID:         summary.RunID,
		Channel:       model.ChannelOpenMarket,
		SyncType:      model.SyncTypeOrder,
		WindowFrom:    from,
		WindowTo:      to,
		InsertedCount: totals.Inserted,
		UpdatedCount:  totals.Updated,
		SkippedCount:  totals.Skipped,
		ErrorCount:    len(totals.Errors),
		ErrorSummary:  totals.ErrorSummary(),
		DurationMs:    summary.Elapsed.Milliseconds(),
	}
	if summary.Truncated() {
		prefix := fmt.Sprintf("预算截断，跳过 %d 个单元; ", len(summary.SkippedCells))
		entry.ErrorSummary = prefix + entry.ErrorSummary
	}
	if err := s.syncLogRepo.Create(ctx, entry); err != nil {
		s.log.Errorw("写入调度审计失败", "err", err)
	}
}

// runWindowBounds 已执行单元覆盖的最早/最晚日界
func runWindowBounds(summary *RunSummary) (*time.Time, *time.Time) {
	var from, to *time.Time
	for _, cr := range summary.Completed {
		f, t := cr.Cell.Day.From, cr.Cell.Day.To
		if from == nil || f.Before(*from) {
			fc := f
			from = &fc
		}
		if to == nil || t.After(*to) {
			tc := t
			to = &tc
		}
	}
	return from, to
}

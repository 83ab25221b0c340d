// Package timewindow 把任意日期范围切分为适合单次抓取的子窗口
//
// 部分平台接口在 from == to 时返回空结果，且闭开边界行为按端点各不相同、
// 文档不可信。标准做法：请求端放宽上界一天，拿到结果后在客户端按记录
// 自身的权威时间戳过滤回目标边界（widen-then-filter）
package timewindow

import "time"

// KST 平台侧业务时区（韩国标准时间）
var KST = time.FixedZone("KST", 9*60*60)

// ==================== Window 时间窗口 ====================

// Window 半开区间 [From, To)
type Window struct {
	From time.Time
	To   time.Time
}

// Contains 按记录自身时间戳判断是否落在窗口内
// 过滤以此为准，不信任请求回显的边界
func (w Window) Contains(ts time.Time) bool {
	return !ts.Before(w.From) && ts.Before(w.To)
}

// Widen 上界外扩 d，用于 from==to 返回空的端点
func (w Window) Widen(d time.Duration) Window {
	return Window{From: w.From, To: w.To.Add(d)}
}

// DateParam 请求参数用的日期串（KST）
func (w Window) DateParams() (string, string) {
	return w.From.In(KST).Format("2006-01-02"), w.To.In(KST).Format("2006-01-02")
}

// ==================== 切分 ====================

// Day 单个自然日窗口（KST）
func Day(date time.Time) Window {
	d := date.In(KST)
	from := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, KST)
	return Window{From: from, To: from.AddDate(0, 0, 1)}
}

// SplitDays 把 [from, to] 的日期范围切成逐日窗口，按时间升序
// from、to 只取日期部分，两端均含
func SplitDays(from, to time.Time) []Window {
	start := Day(from)
	end := Day(to)

	var windows []Window
	for w := start; !w.From.After(end.From); {
		windows = append(windows, w)
		w = Window{From: w.To, To: w.To.AddDate(0, 0, 1)}
	}
	return windows
}

// SplitRange 把半开区间 [from, to) 切成逐日窗口，按时间升序
// to 是排他时刻：正好落在次日零点时不会多出一个空窗口
func SplitRange(from, to time.Time) []Window {
	var windows []Window
	for w := Day(from); w.From.Before(to); {
		windows = append(windows, w)
		w = Window{From: w.To, To: w.To.AddDate(0, 0, 1)}
	}
	return windows
}

// RollingDays 截至 now 的最近 n 天窗口（含今天），升序
// cron 入口每次重推同一滚动窗口，收敛靠高频重入而不是精确续传
func RollingDays(now time.Time, n int) []Window {
	if n <= 0 {
		return nil
	}
	today := Day(now)
	first := Day(now.In(KST).AddDate(0, 0, -(n - 1)))
	return SplitDays(first.From, today.From)
}

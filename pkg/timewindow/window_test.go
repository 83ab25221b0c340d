package timewindow

import (
	"testing"
	"time"
)

func TestDay_Boundaries(t *testing.T) {
	d := time.Date(2026, 1, 30, 15, 4, 5, 0, KST)
	w := Day(d)

	if !w.From.Equal(time.Date(2026, 1, 30, 0, 0, 0, 0, KST)) {
		t.Errorf("From = %v, want 2026-01-30 00:00 KST", w.From)
	}
	if !w.To.Equal(time.Date(2026, 1, 31, 0, 0, 0, 0, KST)) {
		t.Errorf("To = %v, want 2026-01-31 00:00 KST", w.To)
	}
}

func TestWindow_Contains(t *testing.T) {
	w := Day(time.Date(2026, 1, 30, 0, 0, 0, 0, KST))

	inside := time.Date(2026, 1, 30, 23, 50, 0, 0, KST)
	nextDay := time.Date(2026, 1, 31, 0, 5, 0, 0, KST)
	exactEnd := time.Date(2026, 1, 31, 0, 0, 0, 0, KST)

	if !w.Contains(inside) {
		t.Error("23:50 当天记录应落在窗口内")
	}
	if w.Contains(nextDay) {
		t.Error("次日 00:05 记录不应泄漏进窗口")
	}
	if w.Contains(exactEnd) {
		t.Error("半开区间，上界本身不应包含")
	}
}

// 放宽后再按记录时间戳过滤：次日记录零泄漏
func TestWindow_WidenThenFilter(t *testing.T) {
	day := Day(time.Date(2026, 1, 30, 0, 0, 0, 0, KST))
	widened := day.Widen(24 * time.Hour)

	// 模拟 from==to 返回空的端点：请求用放宽窗口
	records := []time.Time{
		time.Date(2026, 1, 30, 23, 50, 0, 0, KST),
		time.Date(2026, 1, 31, 0, 5, 0, 0, KST),
	}

	var kept []time.Time
	for _, ts := range records {
		if !widened.Contains(ts) {
			continue // 请求层面先粗过
		}
		if day.Contains(ts) {
			kept = append(kept, ts)
		}
	}

	if len(kept) != 1 {
		t.Fatalf("保留记录数 = %d, want 1", len(kept))
	}
	if !kept[0].Equal(records[0]) {
		t.Errorf("保留了错误的记录: %v", kept[0])
	}
}

func TestSplitDays(t *testing.T) {
	from := time.Date(2026, 1, 28, 10, 0, 0, 0, KST)
	to := time.Date(2026, 1, 31, 2, 0, 0, 0, KST)

	windows := SplitDays(from, to)
	if len(windows) != 4 {
		t.Fatalf("窗口数 = %d, want 4", len(windows))
	}

	// 升序且首尾相接
	for i := 1; i < len(windows); i++ {
		if !windows[i].From.Equal(windows[i-1].To) {
			t.Errorf("窗口 %d 与前一个不相接: %v != %v", i, windows[i].From, windows[i-1].To)
		}
	}
	if !windows[0].From.Equal(time.Date(2026, 1, 28, 0, 0, 0, 0, KST)) {
		t.Errorf("首窗口起点 = %v", windows[0].From)
	}
}

func TestSplitDays_SingleDay(t *testing.T) {
	d := time.Date(2026, 2, 1, 0, 0, 0, 0, KST)
	windows := SplitDays(d, d)
	if len(windows) != 1 {
		t.Fatalf("窗口数 = %d, want 1", len(windows))
	}
}

// 排他上界正好是次日零点时，不应多出次日窗口
func TestSplitRange_ExclusiveUpperBound(t *testing.T) {
	from := time.Date(2026, 1, 30, 0, 0, 0, 0, KST)
	to := time.Date(2026, 1, 31, 0, 0, 0, 0, KST)

	windows := SplitRange(from, to)
	if len(windows) != 1 {
		t.Fatalf("窗口数 = %d, want 1", len(windows))
	}
	if !windows[0].From.Equal(from) {
		t.Errorf("窗口起点 = %v", windows[0].From)
	}
	if windows[0].Contains(to) {
		t.Error("次日零点不应落在任何窗口内")
	}
}

func TestSplitRange_MultiDay(t *testing.T) {
	from := time.Date(2026, 1, 29, 0, 0, 0, 0, KST)
	to := time.Date(2026, 1, 31, 0, 0, 0, 0, KST)

	windows := SplitRange(from, to)
	if len(windows) != 2 {
		t.Fatalf("窗口数 = %d, want 2", len(windows))
	}
	if !windows[1].To.Equal(to) {
		t.Errorf("末窗口终点 = %v, want %v", windows[1].To, to)
	}
}

func TestRollingDays(t *testing.T) {
	now := time.Date(2026, 1, 31, 8, 0, 0, 0, KST)
	windows := RollingDays(now, 2)

	if len(windows) != 2 {
		t.Fatalf("窗口数 = %d, want 2", len(windows))
	}
	if !windows[0].From.Equal(time.Date(2026, 1, 30, 0, 0, 0, 0, KST)) {
		t.Errorf("昨天窗口起点 = %v", windows[0].From)
	}
	if !windows[1].From.Equal(time.Date(2026, 1, 31, 0, 0, 0, 0, KST)) {
		t.Errorf("今天窗口起点 = %v", windows[1].From)
	}
}

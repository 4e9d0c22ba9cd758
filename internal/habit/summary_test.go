package habit

import (
	"testing"
	"time"
)

func TestActiveHabitsFiltersByAppearance(t *testing.T) {
	daily := checkHabit(1, d(2025, 1, 1), Frequency{Type: FreqDaily}, SlotMorning)
	monday := checkHabit(2, d(2025, 1, 1), weekdaysOf(time.Monday), SlotEvening)
	monday.Name = "复盘"

	engine := NewEngine(newMemorySource(daily, monday))

	// 2025-01-07 是周二
	active := engine.ActiveHabits(d(2025, 1, 7))
	if len(active) != 1 || active[0].Habit.ID != 1 {
		t.Fatalf("expected only the daily habit, got %d entries", len(active))
	}

	// 周一两个都出现
	active = engine.ActiveHabits(d(2025, 1, 6))
	if len(active) != 2 {
		t.Fatalf("expected 2 active habits on Monday, got %d", len(active))
	}
}

func TestActiveHabitsExcludesEmptyDayOverride(t *testing.T) {
	h := checkHabit(1, d(2025, 1, 1), Frequency{Type: FreqDaily}, SlotMorning)
	src := newMemorySource(h)
	src.overrideDay(1, d(2025, 1, 10), []TimeSlot{})

	engine := NewEngine(src)

	if active := engine.ActiveHabits(d(2025, 1, 10)); len(active) != 0 {
		t.Fatalf("empty day override should remove the habit, got %d entries", len(active))
	}
}

func TestSummaryConservation(t *testing.T) {
	a := checkHabit(1, d(2025, 1, 1), Frequency{Type: FreqDaily}, SlotMorning, SlotEvening)
	b := checkHabit(2, d(2025, 1, 1), Frequency{Type: FreqDaily}, SlotAfternoon)
	b.Name = "冥想"
	src := newMemorySource(a, b)

	day := d(2025, 1, 10)
	src.complete(1, day, SlotMorning)
	src.set(2, day, SlotAfternoon, Instance{Status: StatusSnoozed})

	engine := NewEngine(src)
	summary := engine.Summarize(day)

	slotCount := 0
	for _, active := range engine.ActiveHabits(day) {
		slotCount += len(active.Slots)
	}

	if summary.Total != slotCount {
		t.Fatalf("total %d does not match active slot count %d", summary.Total, slotCount)
	}
	if summary.Completed+summary.Snoozed+summary.Pending != summary.Total {
		t.Fatalf("counts do not add up: %+v", summary)
	}
	if summary.Completed != 1 || summary.Snoozed != 1 || summary.Pending != 1 {
		t.Fatalf("unexpected classification: %+v", summary)
	}
	if summary.CompletedPercent != 33 {
		t.Fatalf("expected completed percent 33, got %d", summary.CompletedPercent)
	}
}

func TestSummaryOverachieved(t *testing.T) {
	h := numericHabit(1, d(2025, 1, 1), 10, SlotMorning)
	src := newMemorySource(h)

	src.complete(1, d(2025, 1, 1), SlotMorning)
	src.complete(1, d(2025, 1, 2), SlotMorning)
	src.complete(1, d(2025, 1, 3), SlotMorning)
	src.set(1, d(2025, 1, 4), SlotMorning, Instance{Status: StatusCompleted, GoalOverride: 12})

	engine := NewEngine(src)

	if summary := engine.Summarize(d(2025, 1, 4)); !summary.Overachieved {
		t.Fatalf("expected sustained overachievement, got %+v", summary)
	}

	// 连胜不足 2 天的单次冲高不算
	fresh := numericHabit(2, d(2025, 1, 3), 10, SlotMorning)
	fresh.Name = "俯卧撑"
	src2 := newMemorySource(fresh)
	src2.set(2, d(2025, 1, 3), SlotMorning, Instance{Status: StatusCompleted, GoalOverride: 12})

	engine2 := NewEngine(src2)
	if summary := engine2.Summarize(d(2025, 1, 3)); summary.Overachieved {
		t.Fatalf("one-off overachievement should not set the flag: %+v", summary)
	}
}

func TestSummaryIdempotent(t *testing.T) {
	h := checkHabit(1, d(2025, 1, 1), Frequency{Type: FreqDaily}, SlotMorning)
	src := newMemorySource(h)
	src.complete(1, d(2025, 1, 10), SlotMorning)

	engine := NewEngine(src)

	first := engine.Summarize(d(2025, 1, 10))
	second := engine.Summarize(d(2025, 1, 10))
	if first != second {
		t.Fatal("expected the cached summary instance on repeat queries")
	}

	activeFirst := engine.ActiveHabits(d(2025, 1, 10))
	activeSecond := engine.ActiveHabits(d(2025, 1, 10))
	if len(activeFirst) != len(activeSecond) {
		t.Fatal("expected identical active habit results on repeat queries")
	}
}

func TestInvalidateHabitRefreshesResults(t *testing.T) {
	h := checkHabit(1, d(2025, 1, 1), Frequency{Type: FreqDaily}, SlotMorning)
	src := newMemorySource(h)
	engine := NewEngine(src)

	day := d(2025, 1, 10)
	if summary := engine.Summarize(day); summary.Pending != 1 {
		t.Fatalf("expected 1 pending before completion, got %+v", summary)
	}

	src.complete(1, day, SlotMorning)

	// 未失效前读到的是缓存值
	if summary := engine.Summarize(day); summary.Pending != 1 {
		t.Fatalf("expected stale cached summary before invalidation, got %+v", summary)
	}

	engine.InvalidateHabit(1)

	if summary := engine.Summarize(day); summary.Completed != 1 {
		t.Fatalf("expected refreshed summary after invalidation, got %+v", summary)
	}
	if got := engine.Streak(1, day); got != 1 {
		t.Fatalf("expected streak 1 after invalidation, got %d", got)
	}
}

func TestInvalidateAllClearsEverything(t *testing.T) {
	h := checkHabit(1, d(2025, 1, 1), Frequency{Type: FreqDaily}, SlotMorning)
	src := newMemorySource(h)
	engine := NewEngine(src)

	engine.Summarize(d(2025, 1, 10))
	src.complete(1, d(2025, 1, 10), SlotMorning)
	engine.InvalidateAll()

	if summary := engine.Summarize(d(2025, 1, 10)); summary.Completed != 1 {
		t.Fatalf("expected recomputed summary, got %+v", summary)
	}
}

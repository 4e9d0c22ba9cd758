package service

import (
	"errors"
	"testing"

	"github.com/habitlog/internal/habit"
)

func TestStatusServiceSetInstanceDrivesStreak(t *testing.T) {
	habits, statuses, engine, cleanup := newTestStack(t)
	defer cleanup()

	record, err := habits.Create(dailyInput("晨跑", date(2025, 1, 1), "morning"))
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}

	for i := 0; i < 3; i++ {
		day := date(2025, 1, 1).AddDate(0, 0, i)
		if _, err := statuses.SetInstance(record.ID, day, "morning", InstanceInput{Status: "completed", Source: "manual"}); err != nil {
			t.Fatalf("SetInstance returned error: %v", err)
		}
	}

	if got := engine.Streak(record.ID, date(2025, 1, 3)); got != 3 {
		t.Fatalf("expected streak 3, got %d", got)
	}

	// 重复写同一天同一时段：幂等更新而不是新建
	inst, err := statuses.SetInstance(record.ID, date(2025, 1, 3), "morning", InstanceInput{Status: "snoozed", Note: "下雨改为拉伸"})
	if err != nil {
		t.Fatalf("SetInstance update returned error: %v", err)
	}
	if inst.Status != "snoozed" || inst.Note != "下雨改为拉伸" {
		t.Fatalf("expected updated instance, got %+v", inst)
	}

	// snoozed 不中断连胜
	if got := engine.Streak(record.ID, date(2025, 1, 3)); got != 3 {
		t.Fatalf("expected streak 3 after snooze, got %d", got)
	}

	if _, err := statuses.SetInstance(record.ID, date(2025, 1, 4), "morning", InstanceInput{Status: "done"}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestStatusServiceWriteInvalidatesCaches(t *testing.T) {
	habits, statuses, engine, cleanup := newTestStack(t)
	defer cleanup()

	record, err := habits.Create(dailyInput("背单词", date(2025, 1, 1), "evening"))
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}

	day := date(2025, 1, 10)
	if summary := engine.Summarize(day); summary.Pending != 1 {
		t.Fatalf("expected 1 pending slot, got %+v", summary)
	}

	// 写入方负责同步失效，读取方无需手动清缓存
	if _, err := statuses.SetInstance(record.ID, day, "evening", InstanceInput{Status: "completed"}); err != nil {
		t.Fatalf("SetInstance returned error: %v", err)
	}

	if summary := engine.Summarize(day); summary.Completed != 1 {
		t.Fatalf("expected summary refreshed after write, got %+v", summary)
	}

	if err := statuses.DeleteInstance(record.ID, day, "evening"); err != nil {
		t.Fatalf("DeleteInstance returned error: %v", err)
	}
	if summary := engine.Summarize(day); summary.Pending != 1 {
		t.Fatalf("expected pending after delete, got %+v", summary)
	}
}

func TestStatusServiceGoalOverride(t *testing.T) {
	habits, statuses, engine, cleanup := newTestStack(t)
	defer cleanup()

	input := dailyInput("喝水", date(2025, 1, 1), "morning")
	input.GoalKind = "numeric"
	input.GoalBase = 8
	input.GoalUnit = "杯"
	record, err := habits.Create(input)
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}

	day := date(2025, 1, 5)
	if _, err := statuses.SetInstance(record.ID, day, "morning", InstanceInput{Status: "completed", GoalOverride: 12}); err != nil {
		t.Fatalf("SetInstance returned error: %v", err)
	}

	snapshot := engine.ActiveHabits(day)
	if len(snapshot) != 1 {
		t.Fatalf("expected 1 active habit, got %d", len(snapshot))
	}
	if got := engine.SmartGoal(snapshot[0].Habit, day, habit.SlotMorning); got != 12 {
		t.Fatalf("expected goal override 12, got %d", got)
	}
}

func TestStatusServiceDayOverride(t *testing.T) {
	habits, statuses, engine, cleanup := newTestStack(t)
	defer cleanup()

	record, err := habits.Create(dailyInput("拉伸", date(2025, 1, 1), "morning", "evening"))
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}

	day := date(2025, 1, 8)
	if _, err := statuses.SetDayOverride(record.ID, day, []string{"afternoon"}); err != nil {
		t.Fatalf("SetDayOverride returned error: %v", err)
	}

	snapshot := engine.ActiveHabits(day)
	if len(snapshot) != 1 || len(snapshot[0].Slots) != 1 || snapshot[0].Slots[0] != habit.SlotAfternoon {
		t.Fatalf("expected afternoon override, got %+v", snapshot)
	}

	// 清空覆盖后恢复排期时段
	if err := statuses.ClearDayOverride(record.ID, day); err != nil {
		t.Fatalf("ClearDayOverride returned error: %v", err)
	}
	snapshot = engine.ActiveHabits(day)
	if len(snapshot) != 1 || len(snapshot[0].Slots) != 2 {
		t.Fatalf("expected schedule slots restored, got %+v", snapshot)
	}

	if err := statuses.ClearDayOverride(record.ID, day); !errors.Is(err, ErrOverrideNotFound) {
		t.Fatalf("expected ErrOverrideNotFound, got %v", err)
	}

	// 空列表覆盖：当天完全移除
	if _, err := statuses.SetDayOverride(record.ID, day, nil); err != nil {
		t.Fatalf("SetDayOverride with empty list returned error: %v", err)
	}
	if snapshot := engine.ActiveHabits(day); len(snapshot) != 0 {
		t.Fatalf("expected habit removed for the day, got %+v", snapshot)
	}
}

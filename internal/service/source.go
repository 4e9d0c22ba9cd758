package service

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/habit"
	"gorm.io/gorm"
)

// EngineSource 把数据库中的习惯与打卡记录适配成引擎的数据源
// 习惯快照整体缓存在内存中，写方通过 Reset 强制下次读取时重新加载；
// 单日状态不在这里缓存，引擎自身会按日期缓存整日结果
type EngineSource struct {
	mu     sync.Mutex
	db     *gorm.DB
	habits []*habit.Habit
	loaded bool
}

// NewEngineSource 构造数据库数据源
func NewEngineSource(gdb *gorm.DB) *EngineSource {
	return &EngineSource{db: gdb}
}

// Reset 丢弃已加载的习惯快照，必须与引擎缓存失效一起调用
func (s *EngineSource) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
	s.habits = nil
}

// Habits 返回当前全部习惯的领域快照
// 加载失败时返回空集，引擎按"无习惯"优雅降级
func (s *EngineSource) Habits() []*habit.Habit {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.habits
	}

	var records []db.Habit
	if err := s.db.Preload("Schedules", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("start_date ASC")
	}).Order("id ASC").Find(&records).Error; err != nil {
		return nil
	}

	habits := make([]*habit.Habit, 0, len(records))
	for i := range records {
		habits = append(habits, toDomainHabit(&records[i]))
	}

	s.habits = habits
	s.loaded = true
	return s.habits
}

// DayStatus 加载指定日期所有习惯的状态记录
func (s *EngineSource) DayStatus(date time.Time) map[uint]habit.DayStatus {
	day := habit.Day(date)
	result := make(map[uint]habit.DayStatus)

	var instances []db.HabitInstance
	if err := s.db.Where("log_date = ?", day).Find(&instances).Error; err != nil {
		return result
	}
	for _, inst := range instances {
		entry := result[inst.HabitID]
		if entry.Instances == nil {
			entry.Instances = make(map[habit.TimeSlot]habit.Instance)
		}
		entry.Instances[habit.TimeSlot(inst.TimeSlot)] = habit.Instance{
			Status:       habit.Status(inst.Status),
			GoalOverride: inst.GoalOverride,
			Note:         inst.Note,
		}
		result[inst.HabitID] = entry
	}

	var overrides []db.HabitDayOverride
	if err := s.db.Where("log_date = ?", day).Find(&overrides).Error; err != nil {
		return result
	}
	for _, ov := range overrides {
		entry := result[ov.HabitID]
		entry.DailySchedule = decodeSlots(ov.Times)
		result[ov.HabitID] = entry
	}

	return result
}

// toDomainHabit 将数据库记录映射为引擎快照
func toDomainHabit(record *db.Habit) *habit.Habit {
	h := &habit.Habit{
		ID:          record.ID,
		PublicID:    record.PublicID,
		Name:        record.Name,
		Description: record.Description,
		CreatedOn:   habit.Day(record.CreatedOn),
		GraduatedOn: record.GraduatedOn,
		Goal: habit.Goal{
			Kind: habit.GoalKind(record.GoalKind),
			Base: record.GoalBase,
			Unit: record.GoalUnit,
		},
	}

	for i := range record.Schedules {
		h.Schedules = append(h.Schedules, toDomainSchedule(&record.Schedules[i]))
	}

	return h
}

func toDomainSchedule(record *db.HabitSchedule) *habit.Schedule {
	return &habit.Schedule{
		StartDate: habit.Day(record.StartDate),
		EndDate:   record.EndDate,
		Times:     decodeSlots(record.Times),
		Anchor:    record.Anchor,
		Frequency: habit.Frequency{
			Type:     habit.FrequencyType(record.FrequencyType),
			Weekdays: decodeWeekdays(record.Weekdays),
			Unit:     habit.IntervalUnit(record.IntervalUnit),
			Amount:   record.IntervalAmount,
		},
	}
}

// 时段与星期集合以逗号分隔存储，空串解码为空集（而非 nil）

func encodeSlots(slots []habit.TimeSlot) string {
	parts := make([]string, 0, len(slots))
	for _, slot := range slots {
		parts = append(parts, string(slot))
	}
	return strings.Join(parts, ",")
}

func decodeSlots(value string) []habit.TimeSlot {
	value = strings.TrimSpace(value)
	slots := make([]habit.TimeSlot, 0)
	if value == "" {
		return slots
	}
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			slots = append(slots, habit.TimeSlot(part))
		}
	}
	return slots
}

func encodeWeekdays(days []time.Weekday) string {
	parts := make([]string, 0, len(days))
	for _, day := range days {
		parts = append(parts, fmt.Sprintf("%d", int(day)))
	}
	return strings.Join(parts, ",")
}

func decodeWeekdays(value string) []time.Weekday {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	days := make([]time.Weekday, 0)
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 6 {
			continue
		}
		days = append(days, time.Weekday(n))
	}
	return days
}

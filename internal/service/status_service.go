package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/habit"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrInvalidStatus 当完成状态取值非法时返回
	ErrInvalidStatus = errors.New("invalid instance status")
	// ErrOverrideNotFound 在指定单日覆盖不存在时返回
	ErrOverrideNotFound = errors.New("day override not found")
)

// StatusService 负责打卡实例与单日时段覆盖的写入
// 引擎只读这份数据；每次写入都在返回前同步失效相关缓存
type StatusService struct {
	db     *gorm.DB
	engine *habit.Engine
	source *EngineSource
}

// NewStatusService 构造 StatusService
func NewStatusService(gdb *gorm.DB, engine *habit.Engine, source *EngineSource) *StatusService {
	return &StatusService{db: gdb, engine: engine, source: source}
}

// InstanceInput 定义写入打卡实例时的可配置字段
// GoalOverride 为 0 表示不覆盖目标量
type InstanceInput struct {
	Status       string
	GoalOverride int
	Note         string
	Source       string
}

// SetInstance 幂等写入某天某时段的完成记录：存在则更新，否则创建
func (s *StatusService) SetInstance(habitID uint, date time.Time, slot string, input InstanceInput) (*db.HabitInstance, error) {
	status := strings.TrimSpace(strings.ToLower(input.Status))
	if status == "" {
		status = string(habit.StatusPending)
	}
	if status != string(habit.StatusPending) &&
		status != string(habit.StatusCompleted) &&
		status != string(habit.StatusSnoozed) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, input.Status)
	}
	if input.GoalOverride < 0 {
		return nil, fmt.Errorf("%w: goal override must not be negative", ErrInvalidStatus)
	}

	logDate := habit.Day(date)
	record := db.HabitInstance{
		HabitID:      habitID,
		LogDate:      logDate,
		TimeSlot:     strings.TrimSpace(slot),
		Status:       status,
		GoalOverride: input.GoalOverride,
		Note:         strings.TrimSpace(input.Note),
		Source:       strings.TrimSpace(input.Source),
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "habit_id"}, {Name: "log_date"}, {Name: "time_slot"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "goal_override", "note", "source", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("upsert habit instance: %w", err)
	}

	if err := s.db.Where("habit_id = ? AND log_date = ? AND time_slot = ?", habitID, logDate, record.TimeSlot).
		First(&record).Error; err != nil {
		return nil, fmt.Errorf("reload habit instance: %w", err)
	}

	s.invalidateHabit(habitID)
	return &record, nil
}

// DeleteInstance 删除某天某时段的完成记录，等价于回到 pending
func (s *StatusService) DeleteInstance(habitID uint, date time.Time, slot string) error {
	if err := s.db.Where("habit_id = ? AND log_date = ? AND time_slot = ?",
		habitID, habit.Day(date), strings.TrimSpace(slot)).
		Delete(&db.HabitInstance{}).Error; err != nil {
		return fmt.Errorf("delete habit instance: %w", err)
	}

	s.invalidateHabit(habitID)
	return nil
}

// SetDayOverride 设置单日时段覆盖，空列表表示当天清空全部时段
func (s *StatusService) SetDayOverride(habitID uint, date time.Time, times []string) (*db.HabitDayOverride, error) {
	slots := make([]habit.TimeSlot, 0, len(times))
	for _, t := range times {
		t = strings.TrimSpace(t)
		if t != "" {
			slots = append(slots, habit.TimeSlot(t))
		}
	}

	record := db.HabitDayOverride{
		HabitID: habitID,
		LogDate: habit.Day(date),
		Times:   encodeSlots(slots),
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "habit_id"}, {Name: "log_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"times", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("upsert day override: %w", err)
	}

	if err := s.db.Where("habit_id = ? AND log_date = ?", habitID, record.LogDate).
		First(&record).Error; err != nil {
		return nil, fmt.Errorf("reload day override: %w", err)
	}

	s.invalidateHabit(habitID)
	return &record, nil
}

// ClearDayOverride 移除单日覆盖，当天恢复历史排期的时段
func (s *StatusService) ClearDayOverride(habitID uint, date time.Time) error {
	result := s.db.Where("habit_id = ? AND log_date = ?", habitID, habit.Day(date)).
		Delete(&db.HabitDayOverride{})
	if result.Error != nil {
		return fmt.Errorf("clear day override: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrOverrideNotFound
	}

	s.invalidateHabit(habitID)
	return nil
}

func (s *StatusService) invalidateHabit(id uint) {
	s.source.Reset()
	s.engine.InvalidateHabit(id)
}

package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/habit"
	"gorm.io/gorm"
)

var (
	// ErrHabitNotFound 在指定习惯不存在时返回
	ErrHabitNotFound = errors.New("habit not found")
	// ErrInvalidFrequency 当频率配置异常时返回
	ErrInvalidFrequency = errors.New("invalid habit frequency configuration")
	// ErrInvalidSchedule 当排期版本与历史区间冲突时返回
	ErrInvalidSchedule = errors.New("invalid habit schedule")
	// ErrInvalidGoal 当目标配置异常时返回
	ErrInvalidGoal = errors.New("invalid habit goal configuration")
)

// HabitService 负责习惯与排期版本的增删改查
// 排期历史只追加：变更排期时关闭当前开放版本并追加新版本，
// 旧日期仍按当时生效的版本渲染
// 每次写入都会同步失效引擎缓存，保证下一次读取不会命中脏数据
type HabitService struct {
	db     *gorm.DB
	engine *habit.Engine
	source *EngineSource
}

// NewHabitService 构造 HabitService
func NewHabitService(gdb *gorm.DB, engine *habit.Engine, source *EngineSource) *HabitService {
	return &HabitService{db: gdb, engine: engine, source: source}
}

// ScheduleInput 描述一个排期版本的可配置字段
type ScheduleInput struct {
	StartDate      time.Time
	Times          []string
	FrequencyType  string
	Weekdays       []int
	IntervalUnit   string
	IntervalAmount int
	Anchor         *time.Time
}

// HabitInput 定义创建习惯时的可配置字段，Schedule 为首个排期版本
type HabitInput struct {
	Name        string
	Description string
	GoalKind    string
	GoalBase    int
	GoalUnit    string
	CreatedOn   time.Time
	Schedule    ScheduleInput
}

// List 返回全部习惯，排期版本按时间升序预加载
func (s *HabitService) List() ([]db.Habit, error) {
	var habits []db.Habit
	if err := s.db.Preload("Schedules", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("start_date ASC")
	}).Order("id ASC").Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	return habits, nil
}

// Get 根据 ID 获取习惯
func (s *HabitService) Get(id uint) (*db.Habit, error) {
	var record db.Habit
	if err := s.db.Preload("Schedules", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("start_date ASC")
	}).First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, fmt.Errorf("get habit: %w", err)
	}
	return &record, nil
}

// Create 新建习惯及其首个排期版本
func (s *HabitService) Create(input HabitInput) (*db.Habit, error) {
	if err := validateHabitInput(input); err != nil {
		return nil, err
	}
	if err := validateScheduleInput(input.Schedule); err != nil {
		return nil, err
	}

	createdOn := habit.Day(input.CreatedOn)
	record := db.Habit{
		PublicID:    uuid.NewString(),
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		GoalKind:    normalizeGoalKind(input.GoalKind),
		GoalBase:    input.GoalBase,
		GoalUnit:    strings.TrimSpace(input.GoalUnit),
		CreatedOn:   createdOn,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("create habit: %w", err)
		}

		version := scheduleRecord(record.ID, input.Schedule)
		version.StartDate = createdOn
		if err := tx.Create(&version).Error; err != nil {
			return fmt.Errorf("create schedule version: %w", err)
		}
		record.Schedules = []db.HabitSchedule{version}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateAll()
	return &record, nil
}

// Rename 更新习惯的名称与描述，不产生新的排期版本
func (s *HabitService) Rename(id uint, name, description string) (*db.Habit, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("habit name is required")
	}

	record, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	record.Name = strings.TrimSpace(name)
	record.Description = strings.TrimSpace(description)
	if err := s.db.Save(record).Error; err != nil {
		return nil, fmt.Errorf("rename habit: %w", err)
	}

	s.invalidateHabit(id)
	return record, nil
}

// Reschedule 从 input.StartDate 起追加新的排期版本
// 当前开放版本被关闭为 [旧起点, 新起点)，历史版本保持不变
func (s *HabitService) Reschedule(id uint, input ScheduleInput) (*db.Habit, error) {
	if err := validateScheduleInput(input); err != nil {
		return nil, err
	}

	record, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	startDate := habit.Day(input.StartDate)
	if startDate.Before(habit.Day(record.CreatedOn)) {
		return nil, fmt.Errorf("%w: start date precedes habit creation", ErrInvalidSchedule)
	}

	var current db.HabitSchedule
	if err := s.db.Where("habit_id = ? AND end_date IS NULL", id).
		Order("start_date DESC").First(&current).Error; err != nil {
		return nil, fmt.Errorf("find open schedule version: %w", err)
	}
	if startDate.Before(habit.Day(current.StartDate)) {
		return nil, fmt.Errorf("%w: start date precedes the current version", ErrInvalidSchedule)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		current.EndDate = &startDate
		if err := tx.Save(&current).Error; err != nil {
			return fmt.Errorf("close schedule version: %w", err)
		}

		version := scheduleRecord(id, input)
		version.StartDate = startDate
		if err := tx.Create(&version).Error; err != nil {
			return fmt.Errorf("append schedule version: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateHabit(id)
	return s.Get(id)
}

// Graduate 标记习惯毕业，毕业日（含当天）之后不再出现
func (s *HabitService) Graduate(id uint, on time.Time) (*db.Habit, error) {
	record, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	day := habit.Day(on)
	if day.Before(habit.Day(record.CreatedOn)) {
		return nil, fmt.Errorf("%w: graduation precedes habit creation", ErrInvalidSchedule)
	}

	record.GraduatedOn = &day
	if err := s.db.Save(record).Error; err != nil {
		return nil, fmt.Errorf("graduate habit: %w", err)
	}

	s.invalidateHabit(id)
	return record, nil
}

// Delete 删除习惯及其全部排期版本与打卡记录
func (s *HabitService) Delete(id uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("habit_id = ?", id).Delete(&db.HabitSchedule{}).Error; err != nil {
			return err
		}
		if err := tx.Where("habit_id = ?", id).Delete(&db.HabitInstance{}).Error; err != nil {
			return err
		}
		if err := tx.Where("habit_id = ?", id).Delete(&db.HabitDayOverride{}).Error; err != nil {
			return err
		}
		return tx.Delete(&db.Habit{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}

	s.invalidateAll()
	return nil
}

func (s *HabitService) invalidateHabit(id uint) {
	s.source.Reset()
	s.engine.InvalidateHabit(id)
}

func (s *HabitService) invalidateAll() {
	s.source.Reset()
	s.engine.InvalidateAll()
}

func scheduleRecord(habitID uint, input ScheduleInput) db.HabitSchedule {
	weekdays := make([]time.Weekday, 0, len(input.Weekdays))
	for _, day := range input.Weekdays {
		weekdays = append(weekdays, time.Weekday(day))
	}

	slots := make([]habit.TimeSlot, 0, len(input.Times))
	for _, t := range input.Times {
		slots = append(slots, habit.TimeSlot(strings.TrimSpace(t)))
	}

	var anchor *time.Time
	if input.Anchor != nil {
		day := habit.Day(*input.Anchor)
		anchor = &day
	}

	return db.HabitSchedule{
		HabitID:        habitID,
		StartDate:      habit.Day(input.StartDate),
		Times:          encodeSlots(slots),
		FrequencyType:  strings.TrimSpace(strings.ToLower(input.FrequencyType)),
		Weekdays:       encodeWeekdays(weekdays),
		IntervalUnit:   strings.TrimSpace(strings.ToLower(input.IntervalUnit)),
		IntervalAmount: input.IntervalAmount,
		Anchor:         anchor,
	}
}

func validateHabitInput(input HabitInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("habit name is required")
	}

	switch normalizeGoalKind(input.GoalKind) {
	case string(habit.GoalCheck):
	case string(habit.GoalNumeric):
		if input.GoalBase <= 0 {
			return fmt.Errorf("%w: numeric goal requires a positive base", ErrInvalidGoal)
		}
	default:
		return fmt.Errorf("%w: unsupported kind %s", ErrInvalidGoal, input.GoalKind)
	}

	if input.CreatedOn.IsZero() {
		return fmt.Errorf("%w: creation date is required", ErrInvalidSchedule)
	}

	return nil
}

func validateScheduleInput(input ScheduleInput) error {
	if len(input.Times) == 0 {
		return fmt.Errorf("%w: at least one time slot is required", ErrInvalidSchedule)
	}

	switch strings.TrimSpace(strings.ToLower(input.FrequencyType)) {
	case string(habit.FreqDaily):
	case string(habit.FreqWeekdays):
		if len(input.Weekdays) == 0 {
			return fmt.Errorf("%w: weekday frequency requires at least one weekday", ErrInvalidFrequency)
		}
		for _, day := range input.Weekdays {
			if day < 0 || day > 6 {
				return fmt.Errorf("%w: weekday %d out of range", ErrInvalidFrequency, day)
			}
		}
	case string(habit.FreqInterval):
		unit := strings.TrimSpace(strings.ToLower(input.IntervalUnit))
		if unit != string(habit.UnitDays) && unit != string(habit.UnitWeeks) {
			return fmt.Errorf("%w: unsupported interval unit %s", ErrInvalidFrequency, input.IntervalUnit)
		}
		if input.IntervalAmount <= 0 {
			return fmt.Errorf("%w: interval amount must be positive", ErrInvalidFrequency)
		}
	default:
		return fmt.Errorf("%w: unsupported type %s", ErrInvalidFrequency, input.FrequencyType)
	}

	return nil
}

func normalizeGoalKind(kind string) string {
	kind = strings.TrimSpace(strings.ToLower(kind))
	if kind == "" {
		return string(habit.GoalCheck)
	}
	return kind
}

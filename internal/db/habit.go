package db

import (
	"time"

	"gorm.io/gorm"
)

// Habit 定义了习惯模型
// PublicID 是对外暴露的稳定标识，内部关联仍使用自增 ID
// GoalKind 为 check/numeric，numeric 时 GoalBase/GoalUnit 生效
// GraduatedOn 非空表示习惯已毕业退役，历史数据仍按当时配置渲染
type Habit struct {
	gorm.Model
	PublicID    string `gorm:"uniqueIndex;size:36"`
	Name        string
	Description string
	GoalKind    string
	GoalBase    int
	GoalUnit    string
	CreatedOn   time.Time
	GraduatedOn *time.Time
	Schedules   []HabitSchedule `gorm:"constraint:OnDelete:CASCADE"`
}

// HabitSchedule 是习惯的一个历史排期版本，只追加不回改
// 生效区间 [StartDate, EndDate)，EndDate 为空表示当前版本
// Times/Weekdays 以逗号分隔存储；Anchor 可覆盖间隔排期的锚点
type HabitSchedule struct {
	gorm.Model
	HabitID        uint `gorm:"index"`
	StartDate      time.Time
	EndDate        *time.Time
	Times          string
	FrequencyType  string
	Weekdays       string
	IntervalUnit   string
	IntervalAmount int
	Anchor         *time.Time
}

// HabitInstance 记录某天某时段的完成情况
// Habit + LogDate + TimeSlot 采用唯一索引，保证幂等
// GoalOverride 为 0 表示未覆盖；Note 为 Markdown 备注
type HabitInstance struct {
	gorm.Model
	HabitID      uint      `gorm:"index;index:idx_habit_instance_unique,unique"`
	Habit        Habit     `gorm:"constraint:OnDelete:CASCADE"`
	LogDate      time.Time `gorm:"index:idx_habit_instance_unique,unique"`
	TimeSlot     string    `gorm:"index:idx_habit_instance_unique,unique"`
	Status       string
	GoalOverride int
	Note         string
	Source       string
}

// TableName 重写确保唯一索引作用到 habit_id + log_date + time_slot
func (HabitInstance) TableName() string {
	return "habit_instances"
}

// HabitDayOverride 记录单日的时段覆盖：仅替换当天的时段列表
// Habit + LogDate 唯一；Times 为空串表示当天清空全部时段
type HabitDayOverride struct {
	gorm.Model
	HabitID uint      `gorm:"index;index:idx_habit_day_override_unique,unique"`
	Habit   Habit     `gorm:"constraint:OnDelete:CASCADE"`
	LogDate time.Time `gorm:"index:idx_habit_day_override_unique,unique"`
	Times   string
}

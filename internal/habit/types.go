package habit

import "time"

// TimeSlot 表示习惯在一天中占用的时间段
type TimeSlot string

const (
	SlotMorning   TimeSlot = "morning"
	SlotAfternoon TimeSlot = "afternoon"
	SlotEvening   TimeSlot = "evening"
)

// GoalKind 区分打卡型与数值目标型习惯
type GoalKind string

const (
	GoalCheck   GoalKind = "check"
	GoalNumeric GoalKind = "numeric"
)

// Status 表示单个时段实例的完成状态，未记录时默认 pending
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusSnoozed   Status = "snoozed"
)

// FrequencyType 描述排期规则类型
type FrequencyType string

const (
	FreqDaily    FrequencyType = "daily"
	FreqWeekdays FrequencyType = "weekdays"
	FreqInterval FrequencyType = "interval"
)

// IntervalUnit 表示间隔排期的计量单位
type IntervalUnit string

const (
	UnitDays  IntervalUnit = "days"
	UnitWeeks IntervalUnit = "weeks"
)

// Frequency 描述一个排期版本的出现规则
// Weekdays 仅在 FreqWeekdays 下生效；Unit/Amount 仅在 FreqInterval 下生效
type Frequency struct {
	Type     FrequencyType
	Weekdays []time.Weekday
	Unit     IntervalUnit
	Amount   int
}

// Schedule 是习惯的一个历史排期版本
// 生效区间为 [StartDate, EndDate)，EndDate 为 nil 表示当前仍然有效
// Anchor 可覆盖间隔计算的锚点日期，缺省使用 StartDate
type Schedule struct {
	StartDate time.Time
	EndDate   *time.Time
	Times     []TimeSlot
	Frequency Frequency
	Anchor    *time.Time
}

// Goal 描述习惯的目标类型与基础目标量
type Goal struct {
	Kind GoalKind
	Base int
	Unit string
}

// Habit 是引擎视角下的习惯快照
// Schedules 按时间升序排列且区间连续不重叠，只追加不修改
// GraduatedOn 之后（含当天）习惯永久退役，不再出现
type Habit struct {
	ID          uint
	PublicID    string
	Name        string
	Description string
	CreatedOn   time.Time
	GraduatedOn *time.Time
	Goal        Goal
	Schedules   []*Schedule
}

// Instance 是某天某个时段的完成记录
// GoalOverride 为 0 表示未显式覆盖目标量
type Instance struct {
	Status       Status
	GoalOverride int
	Note         string
}

// DayStatus 汇总某个习惯在某一天的状态数据
// DailySchedule 非 nil 时仅替换当天的时段列表，不影响历史排期
type DayStatus struct {
	DailySchedule []TimeSlot
	Instances     map[TimeSlot]Instance
}

// Source 提供引擎所需的只读数据快照
// Habits 返回当前全部习惯；DayStatus 返回指定日期的全部状态记录
// 引擎不会修改返回的数据
type Source interface {
	Habits() []*Habit
	DayStatus(date time.Time) map[uint]DayStatus
}

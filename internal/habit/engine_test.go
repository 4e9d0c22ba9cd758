package habit

import (
	"time"
)

// memorySource 是测试用的内存数据源
type memorySource struct {
	habits []*Habit
	days   map[string]map[uint]DayStatus
}

func newMemorySource(habits ...*Habit) *memorySource {
	return &memorySource{
		habits: habits,
		days:   make(map[string]map[uint]DayStatus),
	}
}

func (s *memorySource) Habits() []*Habit {
	return s.habits
}

func (s *memorySource) DayStatus(date time.Time) map[uint]DayStatus {
	return s.days[dayKey(date)]
}

func (s *memorySource) dayEntry(habitID uint, date time.Time) DayStatus {
	key := dayKey(date)
	day, ok := s.days[key]
	if !ok {
		day = make(map[uint]DayStatus)
		s.days[key] = day
	}
	entry, ok := day[habitID]
	if !ok {
		entry = DayStatus{Instances: make(map[TimeSlot]Instance)}
		day[habitID] = entry
	}
	return entry
}

func (s *memorySource) set(habitID uint, date time.Time, slot TimeSlot, inst Instance) {
	entry := s.dayEntry(habitID, date)
	entry.Instances[slot] = inst
	s.days[dayKey(date)][habitID] = entry
}

func (s *memorySource) complete(habitID uint, date time.Time, slots ...TimeSlot) {
	for _, slot := range slots {
		s.set(habitID, date, slot, Instance{Status: StatusCompleted})
	}
}

func (s *memorySource) overrideDay(habitID uint, date time.Time, slots []TimeSlot) {
	entry := s.dayEntry(habitID, date)
	entry.DailySchedule = slots
	s.days[dayKey(date)][habitID] = entry
}

func d(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

func checkHabit(id uint, created time.Time, freq Frequency, slots ...TimeSlot) *Habit {
	return &Habit{
		ID:        id,
		Name:      "晨跑",
		CreatedOn: created,
		Goal:      Goal{Kind: GoalCheck},
		Schedules: []*Schedule{
			{StartDate: created, Times: slots, Frequency: freq},
		},
	}
}

func numericHabit(id uint, created time.Time, base int, slots ...TimeSlot) *Habit {
	h := checkHabit(id, created, Frequency{Type: FreqDaily}, slots...)
	h.Name = "喝水"
	h.Goal = Goal{Kind: GoalNumeric, Base: base, Unit: "杯"}
	return h
}

func weekdaysOf(days ...time.Weekday) Frequency {
	return Frequency{Type: FreqWeekdays, Weekdays: days}
}

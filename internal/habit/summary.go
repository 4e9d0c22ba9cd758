package habit

import "time"

// ActiveHabit 表示某天应出现的习惯及其当天时段
type ActiveHabit struct {
	Habit *Habit
	Slots []TimeSlot
}

// DaySummary 汇总某天的完成情况
// Overachieved 表示存在持续性的超额完成（有效目标高于基础目标且连胜不短于 2 天）
type DaySummary struct {
	Total            int
	Completed        int
	Snoozed          int
	Pending          int
	CompletedPercent int
	SnoozedPercent   int
	Overachieved     bool
}

// ActiveHabits 返回指定日期所有应出现且时段非空的习惯，整日结果按日期缓存
func (e *Engine) ActiveHabits(date time.Time) []ActiveHabit {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activeHabits(date)
}

func (e *Engine) activeHabits(date time.Time) []ActiveHabit {
	date = Day(date)

	key := dayKey(date)
	if cached, hit := e.active[key]; hit {
		return cached
	}

	result := make([]ActiveHabit, 0)
	for _, h := range e.source.Habits() {
		if !e.appears(h, date) {
			continue
		}
		slots := e.effectiveSlots(h, date)
		if len(slots) == 0 {
			continue
		}
		result = append(result, ActiveHabit{Habit: h, Slots: slots})
	}

	e.active[key] = result
	return result
}

// Summarize 折叠当天所有活跃习惯的时段状态，整日结果按日期缓存
func (e *Engine) Summarize(date time.Time) *DaySummary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.summarize(date)
}

func (e *Engine) summarize(date time.Time) *DaySummary {
	date = Day(date)

	key := dayKey(date)
	if cached, hit := e.summaries[key]; hit {
		return cached
	}

	summary := &DaySummary{}
	for _, active := range e.activeHabits(date) {
		for _, slot := range active.Slots {
			summary.Total++

			inst, _ := e.instance(active.Habit, date, slot)
			switch inst.Status {
			case StatusCompleted:
				summary.Completed++
				if e.slotOverachieved(active.Habit, date, slot) {
					summary.Overachieved = true
				}
			case StatusSnoozed:
				summary.Snoozed++
			default:
				summary.Pending++
			}
		}
	}

	if summary.Total > 0 {
		summary.CompletedPercent = summary.Completed * 100 / summary.Total
		summary.SnoozedPercent = summary.Snoozed * 100 / summary.Total
	}

	e.summaries[key] = summary
	return summary
}

// slotOverachieved 判断已完成的数值型时段是否构成持续超额：
// 有效目标高于基础目标，且截至前一日的连胜不少于 2 天
func (e *Engine) slotOverachieved(h *Habit, date time.Time, slot TimeSlot) bool {
	if h.Goal.Kind != GoalNumeric {
		return false
	}
	if e.smartGoal(h, date, slot) <= h.Goal.Base {
		return false
	}
	return e.streak(h.ID, addDays(date, -1)) >= 2
}

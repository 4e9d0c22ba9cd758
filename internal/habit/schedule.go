package habit

import "time"

// ResolveSchedule 返回习惯在指定日期生效的排期版本
// 日期早于 CreatedOn 或排期历史存在缺口时返回 nil，调用方按"不出现"处理
func (e *Engine) ResolveSchedule(h *Habit, date time.Time) *Schedule {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resolveSchedule(h, date)
}

func (e *Engine) resolveSchedule(h *Habit, date time.Time) *Schedule {
	date = Day(date)
	if date.Before(Day(h.CreatedOn)) {
		return nil
	}

	key := dayKey(date)
	byDate, ok := e.schedules[h.ID]
	if !ok {
		byDate = make(map[string]*Schedule)
		e.schedules[h.ID] = byDate
	}
	if sch, hit := byDate[key]; hit {
		return sch
	}

	var resolved *Schedule
	for _, sch := range h.Schedules {
		if date.Before(Day(sch.StartDate)) {
			continue
		}
		if sch.EndDate != nil && !date.Before(Day(*sch.EndDate)) {
			continue
		}
		resolved = sch
		break
	}

	byDate[key] = resolved
	return resolved
}

// Appears 判断习惯在指定日期是否按排期出现
func (e *Engine) Appears(h *Habit, date time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.appears(h, date)
}

func (e *Engine) appears(h *Habit, date time.Time) bool {
	date = Day(date)

	key := dayKey(date)
	byDate, ok := e.appearances[h.ID]
	if !ok {
		byDate = make(map[string]bool)
		e.appearances[h.ID] = byDate
	}
	if v, hit := byDate[key]; hit {
		return v
	}

	v := e.evalAppearance(h, date)
	byDate[key] = v
	return v
}

func (e *Engine) evalAppearance(h *Habit, date time.Time) bool {
	if h.GraduatedOn != nil && !date.Before(Day(*h.GraduatedOn)) {
		return false
	}

	sch := e.resolveSchedule(h, date)
	if sch == nil {
		return false
	}

	switch sch.Frequency.Type {
	case FreqDaily:
		return true
	case FreqWeekdays:
		for _, wd := range sch.Frequency.Weekdays {
			if date.Weekday() == wd {
				return true
			}
		}
		return false
	case FreqInterval:
		return intervalMatches(sch, date)
	default:
		return false
	}
}

// intervalMatches 实现间隔排期：自锚点起每 Amount 个单位出现一次
// 周间隔要求星期几与锚点一致，仅落在正确的周桶内不算
func intervalMatches(sch *Schedule, date time.Time) bool {
	anchor := Day(sch.StartDate)
	if sch.Anchor != nil {
		anchor = Day(*sch.Anchor)
	}

	diff := daysBetween(anchor, date)
	if diff < 0 {
		return false
	}

	amount := sch.Frequency.Amount
	if amount < 1 {
		amount = 1
	}

	switch sch.Frequency.Unit {
	case UnitWeeks:
		return date.Weekday() == anchor.Weekday() && (diff/7)%amount == 0
	default:
		return diff%amount == 0
	}
}

// EffectiveSlots 返回习惯当天实际占用的时段列表
// 当天存在 DailySchedule 覆盖时绝对优先，即便与历史排期不一致
func (e *Engine) EffectiveSlots(h *Habit, date time.Time) []TimeSlot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.effectiveSlots(h, date)
}

func (e *Engine) effectiveSlots(h *Habit, date time.Time) []TimeSlot {
	date = Day(date)

	if ds := e.dayStatus(h, date); ds.DailySchedule != nil {
		return ds.DailySchedule
	}

	sch := e.resolveSchedule(h, date)
	if sch == nil {
		return nil
	}
	return sch.Times
}

package habit

import "time"

// Streak 返回以 date 为终点（含当天）的连续达标天数
// 不出现的日子是透明的：既不中断也不计入
// 出现的日子要求当天全部时段均为 completed 或 snoozed，否则连胜归零
func (e *Engine) Streak(habitID uint, date time.Time) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.streak(habitID, date)
}

func (e *Engine) streak(habitID uint, date time.Time) int {
	h := e.habitByID(habitID)
	if h == nil {
		return 0
	}

	date = Day(date)
	if date.Before(Day(h.CreatedOn)) {
		return 0
	}

	byDate, ok := e.streaks[habitID]
	if !ok {
		byDate = make(map[string]int)
		e.streaks[habitID] = byDate
	}

	key := dayKey(date)
	if v, hit := byDate[key]; hit {
		return v
	}

	// 增量路径：昨天已有缓存时 O(1) 推进，支撑逐日遍历的 UI
	if yesterday, hit := byDate[dayKey(addDays(date, -1))]; hit {
		v := yesterday
		if e.appears(h, date) {
			if e.dayConsistent(h, date) {
				v = yesterday + 1
			} else {
				v = 0
			}
		}
		byDate[key] = v
		return v
	}

	// 冷路径：有界回溯，到首个未达标的出现日或建档日为止
	count := 0
	for i := 0; i < streakLookbackDays; i++ {
		d := addDays(date, -i)
		if d.Before(Day(h.CreatedOn)) {
			break
		}
		if !e.appears(h, d) {
			continue
		}
		if !e.dayConsistent(h, d) {
			break
		}
		count++
	}

	byDate[key] = count
	return count
}

// dayConsistent 判断出现日当天是否全部时段达标
// 没有记录的时段视为 pending，部分完成同样视为未达标
func (e *Engine) dayConsistent(h *Habit, date time.Time) bool {
	for _, slot := range e.effectiveSlots(h, date) {
		inst, ok := e.instance(h, date, slot)
		if !ok {
			return false
		}
		if inst.Status != StatusCompleted && inst.Status != StatusSnoozed {
			return false
		}
	}
	return true
}

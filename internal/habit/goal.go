package habit

import "time"

const (
	// smartGoalFloor 是推导目标量的下限
	smartGoalFloor = 5
	// lockInWindowDays 是锁定规则回看的天数
	lockInWindowDays = 3
	// 连胜每满 streakBonusStep 天，目标量递增 streakBonusAmount
	streakBonusStep   = 7
	streakBonusAmount = 5
)

// SmartGoal 计算习惯某天某时段的有效目标量
// 打卡型习惯恒为 1；数值型按 覆盖值 → 锁定规则 → 递进规则 的优先级推导
func (e *Engine) SmartGoal(h *Habit, date time.Time, slot TimeSlot) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.smartGoal(h, date, slot)
}

func (e *Engine) smartGoal(h *Habit, date time.Time, slot TimeSlot) int {
	if h.Goal.Kind != GoalNumeric {
		return 1
	}

	date = Day(date)

	if inst, ok := e.instance(h, date, slot); ok && inst.GoalOverride > 0 {
		return inst.GoalOverride
	}

	if locked, ok := e.lockedInGoal(h, date, slot); ok {
		return locked
	}

	return e.progressiveGoal(h, date)
}

// lockedInGoal 实现锁定规则：紧邻的前 3 天同时段均已完成且有效目标量
// 均高于基础目标时，取三者中的最小值，避免单日冲高永久抬升要求
// 任何一天缺勤或未超出基础目标即中断
func (e *Engine) lockedInGoal(h *Habit, date time.Time, slot TimeSlot) (int, bool) {
	lowest := 0
	for i := 1; i <= lockInWindowDays; i++ {
		d := addDays(date, -i)

		inst, ok := e.instance(h, d, slot)
		if !ok || inst.Status != StatusCompleted {
			return 0, false
		}

		goal := inst.GoalOverride
		if goal <= 0 {
			goal = e.progressiveGoal(h, d)
		}
		if goal <= h.Goal.Base {
			return 0, false
		}

		if lowest == 0 || goal < lowest {
			lowest = goal
		}
	}
	return lowest, true
}

// progressiveGoal 是缺省递进规则：基础目标 + 按前一日连胜折算的加成，下限为 smartGoalFloor
func (e *Engine) progressiveGoal(h *Habit, date time.Time) int {
	prior := e.streak(h.ID, addDays(date, -1))
	target := h.Goal.Base + streakBonusAmount*(prior/streakBonusStep)
	if target < smartGoalFloor {
		target = smartGoalFloor
	}
	return target
}

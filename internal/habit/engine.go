package habit

import (
	"sync"
	"time"
)

// streakLookbackDays 限制冷路径回溯的最大天数，保证无缓存时也能确定性终止
const streakLookbackDays = 365

// Engine 是习惯排期与统计引擎
// 所有计算都是对 Source 快照的纯函数，缓存是引擎唯一的可变状态
// 读方法可并发调用；写方（编辑/打卡层）必须在下一次读取前同步调用对应的失效方法
type Engine struct {
	mu     sync.Mutex
	source Source

	// 嵌套缓存：习惯 → 日期 → 值，按习惯整体清除互不干扰
	schedules   map[uint]map[string]*Schedule
	appearances map[uint]map[string]bool
	streaks     map[uint]map[string]int

	// 整日结果缓存：日期 → 值
	statuses  map[string]map[uint]DayStatus
	active    map[string][]ActiveHabit
	summaries map[string]*DaySummary
}

// NewEngine 构造引擎实例
func NewEngine(source Source) *Engine {
	e := &Engine{source: source}
	e.resetLocked()
	return e
}

func (e *Engine) resetLocked() {
	e.schedules = make(map[uint]map[string]*Schedule)
	e.appearances = make(map[uint]map[string]bool)
	e.streaks = make(map[uint]map[string]int)
	e.statuses = make(map[string]map[uint]DayStatus)
	e.active = make(map[string][]ActiveHabit)
	e.summaries = make(map[string]*DaySummary)
}

// InvalidateHabit 清除指定习惯的全部缓存
// 习惯的排期、打卡状态或目标覆盖发生任何变更后都必须调用
// 整日缓存依赖所有习惯，保守起见一并清除
func (e *Engine) InvalidateHabit(id uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.schedules, id)
	delete(e.appearances, id)
	delete(e.streaks, id)

	e.statuses = make(map[string]map[uint]DayStatus)
	e.active = make(map[string][]ActiveHabit)
	e.summaries = make(map[string]*DaySummary)
}

// InvalidateAll 清空全部缓存，用于导入、批量编辑等结构性变更
func (e *Engine) InvalidateAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

// habitByID 在快照中查找习惯，不存在时返回 nil
func (e *Engine) habitByID(id uint) *Habit {
	for _, h := range e.source.Habits() {
		if h.ID == id {
			return h
		}
	}
	return nil
}

// dayStatus 返回某习惯某天的状态记录，整日结果按日期缓存
func (e *Engine) dayStatus(h *Habit, date time.Time) DayStatus {
	key := dayKey(date)
	day, ok := e.statuses[key]
	if !ok {
		day = e.source.DayStatus(date)
		if day == nil {
			day = map[uint]DayStatus{}
		}
		e.statuses[key] = day
	}
	return day[h.ID]
}

func (e *Engine) instance(h *Habit, date time.Time, slot TimeSlot) (Instance, bool) {
	ds := e.dayStatus(h, date)
	if ds.Instances == nil {
		return Instance{}, false
	}
	inst, ok := ds.Instances[slot]
	return inst, ok
}

package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/habit"
)

// GetDay 返回某天的汇总统计与全部活跃习惯
// 习惯描述与打卡备注以净化后的 HTML 返回，由前端直接渲染
func (a *API) GetDay(c *gin.Context) {
	day, err := parseDateParam(c, "date")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return
	}

	summary := a.engine.Summarize(day)

	c.JSON(http.StatusOK, gin.H{
		"date":    day.Format(dateFormat),
		"summary": serializeSummary(summary),
		"habits":  a.serializeActiveHabits(day),
	})
}

// GetDayHabits 仅返回某天的活跃习惯列表
func (a *API) GetDayHabits(c *gin.Context) {
	day, err := parseDateParam(c, "date")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":   day.Format(dateFormat),
		"habits": a.serializeActiveHabits(day),
	})
}

// GetHabitStreak 返回习惯截至指定日期的连胜天数，日期缺省为今天
func (a *API) GetHabitStreak(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	day, err := parseDateQuery(c, "date")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"habit_id": id,
		"date":     day.Format(dateFormat),
		"streak":   a.engine.Streak(id, day),
	})
}

// GetHabitGoal 返回习惯某天某时段的有效目标量
func (a *API) GetHabitGoal(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	day, err := parseDateQuery(c, "date")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return
	}

	slot := habit.TimeSlot(c.Query("time"))
	if slot == "" {
		respondError(c, http.StatusBadRequest, "请指定时段")
		return
	}

	h := a.domainHabit(id)
	if h == nil {
		respondError(c, http.StatusNotFound, "习惯不存在")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"habit_id": id,
		"date":     day.Format(dateFormat),
		"time":     slot,
		"goal":     a.engine.SmartGoal(h, day, slot),
	})
}

func (a *API) serializeActiveHabits(day time.Time) []gin.H {
	statuses := a.source.DayStatus(day)

	items := make([]gin.H, 0)
	for _, active := range a.engine.ActiveHabits(day) {
		h := active.Habit
		ds := statuses[h.ID]

		slots := make([]gin.H, 0, len(active.Slots))
		for _, slot := range active.Slots {
			entry := gin.H{
				"time":   slot,
				"status": habit.StatusPending,
				"goal":   a.engine.SmartGoal(h, day, slot),
			}
			if ds.Instances != nil {
				if inst, ok := ds.Instances[slot]; ok {
					entry["status"] = inst.Status
					if inst.Note != "" {
						entry["note_html"] = renderMarkdown(inst.Note)
					}
				}
			}
			slots = append(slots, entry)
		}

		item := gin.H{
			"id":     h.PublicID,
			"name":   h.Name,
			"streak": a.engine.Streak(h.ID, day),
			"goal": gin.H{
				"kind": h.Goal.Kind,
				"base": h.Goal.Base,
				"unit": h.Goal.Unit,
			},
			"slots": slots,
		}
		if h.Description != "" {
			item["description_html"] = renderMarkdown(h.Description)
		}
		items = append(items, item)
	}

	return items
}

func serializeSummary(summary *habit.DaySummary) gin.H {
	return gin.H{
		"total":             summary.Total,
		"completed":         summary.Completed,
		"snoozed":           summary.Snoozed,
		"pending":           summary.Pending,
		"completed_percent": summary.CompletedPercent,
		"snoozed_percent":   summary.SnoozedPercent,
		"overachieved":      summary.Overachieved,
	}
}

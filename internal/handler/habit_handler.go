package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/habit"
	"github.com/habitlog/internal/service"
)

type schedulePayload struct {
	StartDate      string   `json:"start_date"`
	Times          []string `json:"times"`
	FrequencyType  string   `json:"frequency_type"`
	Weekdays       []int    `json:"weekdays"`
	IntervalUnit   string   `json:"interval_unit"`
	IntervalAmount int      `json:"interval_amount"`
	Anchor         string   `json:"anchor"`
}

type habitPayload struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	GoalKind    string          `json:"goal_kind"`
	GoalBase    int             `json:"goal_base"`
	GoalUnit    string          `json:"goal_unit"`
	CreatedOn   string          `json:"created_on"`
	Schedule    schedulePayload `json:"schedule"`
}

// ListHabits 返回习惯列表 JSON，含完整排期历史
func (a *API) ListHabits(c *gin.Context) {
	habits, err := a.habits.List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取习惯列表失败")
		return
	}

	items := make([]gin.H, 0, len(habits))
	for i := range habits {
		items = append(items, serializeHabit(&habits[i]))
	}

	c.JSON(http.StatusOK, gin.H{"habits": items})
}

// GetHabit 返回单个习惯详情
func (a *API) GetHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	record, err := a.habits.Get(id)
	if err != nil {
		a.handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"habit": serializeHabit(record)})
}

// CreateHabit 创建习惯及其首个排期版本
func (a *API) CreateHabit(c *gin.Context) {
	var payload habitPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	createdOn, err := habit.ParseDay(payload.CreatedOn)
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的建档日期")
		return
	}

	scheduleInput, ok := a.parseScheduleInput(c, payload.Schedule, createdOn)
	if !ok {
		return
	}

	record, err := a.habits.Create(service.HabitInput{
		Name:        payload.Name,
		Description: payload.Description,
		GoalKind:    payload.GoalKind,
		GoalBase:    payload.GoalBase,
		GoalUnit:    payload.GoalUnit,
		CreatedOn:   createdOn,
		Schedule:    scheduleInput,
	})
	if err != nil {
		a.handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"habit": serializeHabit(record)})
}

// RenameHabit 更新习惯名称与描述
func (a *API) RenameHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	var payload struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	record, err := a.habits.Rename(id, payload.Name, payload.Description)
	if err != nil {
		a.handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"habit": serializeHabit(record)})
}

// RescheduleHabit 从指定日期起追加新的排期版本
func (a *API) RescheduleHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	var payload schedulePayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	startDate, err := habit.ParseDay(payload.StartDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的生效日期")
		return
	}

	scheduleInput, ok := a.parseScheduleInput(c, payload, startDate)
	if !ok {
		return
	}

	record, err := a.habits.Reschedule(id, scheduleInput)
	if err != nil {
		a.handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"habit": serializeHabit(record)})
}

// GraduateHabit 标记习惯毕业
func (a *API) GraduateHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	var payload struct {
		Date string `json:"date"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	day, err := habit.ParseDay(payload.Date)
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的毕业日期")
		return
	}

	record, err := a.habits.Graduate(id, day)
	if err != nil {
		a.handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"habit": serializeHabit(record)})
}

// DeleteHabit 删除习惯及其全部历史数据
func (a *API) DeleteHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	if err := a.habits.Delete(id); err != nil {
		respondError(c, http.StatusInternalServerError, "删除习惯失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// SetInstance 写入某天某时段的完成记录
func (a *API) SetInstance(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	day, err := parseDateParam(c, "date")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return
	}

	slot := c.Param("time")
	if strings.TrimSpace(slot) == "" {
		respondError(c, http.StatusBadRequest, "请指定时段")
		return
	}

	var payload struct {
		Status       string `json:"status"`
		GoalOverride int    `json:"goal_override"`
		Note         string `json:"note"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	record, err := a.statuses.SetInstance(id, day, slot, service.InstanceInput{
		Status:       payload.Status,
		GoalOverride: payload.GoalOverride,
		Note:         payload.Note,
		Source:       "admin_manual",
	})
	if err != nil {
		a.handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"instance": serializeInstance(record)})
}

// DeleteInstance 删除完成记录，该时段回到 pending
func (a *API) DeleteInstance(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	day, err := parseDateParam(c, "date")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return
	}

	if err := a.statuses.DeleteInstance(id, day, c.Param("time")); err != nil {
		respondError(c, http.StatusInternalServerError, "删除打卡记录失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// SetDayOverride 设置单日时段覆盖
func (a *API) SetDayOverride(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	day, err := parseDateParam(c, "date")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return
	}

	var payload struct {
		Times []string `json:"times"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	record, err := a.statuses.SetDayOverride(id, day, payload.Times)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "保存单日覆盖失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"habit_id": record.HabitID,
		"date":     record.LogDate.Format(dateFormat),
		"times":    splitCSV(record.Times),
	})
}

// ClearDayOverride 移除单日覆盖
func (a *API) ClearDayOverride(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	day, err := parseDateParam(c, "date")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return
	}

	if err := a.statuses.ClearDayOverride(id, day); err != nil {
		if errors.Is(err, service.ErrOverrideNotFound) {
			respondError(c, http.StatusNotFound, "单日覆盖不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "移除单日覆盖失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (a *API) parseScheduleInput(c *gin.Context, payload schedulePayload, startDate time.Time) (service.ScheduleInput, bool) {
	input := service.ScheduleInput{
		StartDate:      startDate,
		Times:          payload.Times,
		FrequencyType:  payload.FrequencyType,
		Weekdays:       payload.Weekdays,
		IntervalUnit:   payload.IntervalUnit,
		IntervalAmount: payload.IntervalAmount,
	}

	if strings.TrimSpace(payload.Anchor) != "" {
		anchor, err := habit.ParseDay(payload.Anchor)
		if err != nil {
			respondError(c, http.StatusBadRequest, "无效的锚点日期")
			return service.ScheduleInput{}, false
		}
		input.Anchor = &anchor
	}

	return input, true
}

func serializeHabit(record *db.Habit) gin.H {
	versions := make([]gin.H, 0, len(record.Schedules))
	for _, version := range record.Schedules {
		item := gin.H{
			"start_date":     version.StartDate.Format(dateFormat),
			"times":          splitCSV(version.Times),
			"frequency_type": version.FrequencyType,
		}
		if version.EndDate != nil {
			item["end_date"] = version.EndDate.Format(dateFormat)
		}
		if version.Weekdays != "" {
			item["weekdays"] = splitCSV(version.Weekdays)
		}
		if version.FrequencyType == string(habit.FreqInterval) {
			item["interval_unit"] = version.IntervalUnit
			item["interval_amount"] = version.IntervalAmount
		}
		if version.Anchor != nil {
			item["anchor"] = version.Anchor.Format(dateFormat)
		}
		versions = append(versions, item)
	}

	item := gin.H{
		"id":          record.ID,
		"public_id":   record.PublicID,
		"name":        record.Name,
		"description": record.Description,
		"goal_kind":   record.GoalKind,
		"created_on":  record.CreatedOn.Format(dateFormat),
		"schedules":   versions,
	}
	if record.GoalKind == string(habit.GoalNumeric) {
		item["goal_base"] = record.GoalBase
		item["goal_unit"] = record.GoalUnit
	}
	if record.GraduatedOn != nil {
		item["graduated_on"] = record.GraduatedOn.Format(dateFormat)
	}

	return item
}

func serializeInstance(record *db.HabitInstance) gin.H {
	item := gin.H{
		"habit_id": record.HabitID,
		"date":     record.LogDate.Format(dateFormat),
		"time":     record.TimeSlot,
		"status":   record.Status,
		"source":   record.Source,
	}
	if record.GoalOverride > 0 {
		item["goal_override"] = record.GoalOverride
	}
	if record.Note != "" {
		item["note"] = record.Note
		item["note_html"] = renderMarkdown(record.Note)
	}
	return item
}

func splitCSV(value string) []string {
	parts := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

func (a *API) handleHabitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrHabitNotFound):
		respondError(c, http.StatusNotFound, "习惯不存在")
	case errors.Is(err, service.ErrInvalidFrequency):
		respondError(c, http.StatusBadRequest, "频率配置无效")
	case errors.Is(err, service.ErrInvalidSchedule):
		respondError(c, http.StatusBadRequest, "排期配置无效")
	case errors.Is(err, service.ErrInvalidGoal):
		respondError(c, http.StatusBadRequest, "目标配置无效")
	case errors.Is(err, service.ErrInvalidStatus):
		respondError(c, http.StatusBadRequest, "完成状态无效")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}

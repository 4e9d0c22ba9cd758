package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/habit"
	"github.com/habitlog/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db       *gorm.DB
	engine   *habit.Engine
	source   *service.EngineSource
	habits   *service.HabitService
	statuses *service.StatusService
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB) *API {
	source := service.NewEngineSource(gdb)
	engine := habit.NewEngine(source)

	return &API{
		db:       gdb,
		engine:   engine,
		source:   source,
		habits:   service.NewHabitService(gdb, engine, source),
		statuses: service.NewStatusService(gdb, engine, source),
	}
}

// DB exposes the underlying gorm instance for legacy paths.
func (a *API) DB() *gorm.DB {
	return a.db
}

// Engine 暴露引擎实例，便于宿主在批量导入后统一失效缓存
func (a *API) Engine() *habit.Engine {
	return a.engine
}

// domainHabit 在引擎快照中按内部 ID 查找习惯
func (a *API) domainHabit(id uint) *habit.Habit {
	for _, h := range a.source.Habits() {
		if h.ID == id {
			return h
		}
	}
	return nil
}

// ClearCaches 清空全部引擎缓存，供导入/批量编辑后调用
func (a *API) ClearCaches(c *gin.Context) {
	a.source.Reset()
	a.engine.InvalidateAll()
	c.JSON(200, gin.H{"cleared": true})
}

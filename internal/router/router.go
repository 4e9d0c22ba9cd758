package router

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/handler"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, sessionSecret string) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(sessionSecret))
	r.Use(sessions.Sessions("habitlog_session", store))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// 只读查询接口
	reads := r.Group("/api")
	{
		reads.GET("/days/:date", api.GetDay)
		reads.GET("/days/:date/habits", api.GetDayHabits)
		reads.GET("/habits", api.ListHabits)
		reads.GET("/habits/:id", api.GetHabit)
		reads.GET("/habits/:id/streak", api.GetHabitStreak)
		reads.GET("/habits/:id/goal", api.GetHabitGoal)
	}

	// 后台管理路由
	admin := r.Group("/admin")
	{
		admin.POST("/login", handler.Login)
		admin.GET("/logout", handler.Logout)

		// 需要认证的写入接口
		auth := admin.Group("/api")
		auth.Use(handler.AuthRequired())
		{
			auth.POST("/habits", api.CreateHabit)
			auth.PUT("/habits/:id", api.RenameHabit)
			auth.PUT("/habits/:id/schedule", api.RescheduleHabit)
			auth.POST("/habits/:id/graduate", api.GraduateHabit)
			auth.DELETE("/habits/:id", api.DeleteHabit)

			auth.PUT("/habits/:id/days/:date/slots/:time", api.SetInstance)
			auth.DELETE("/habits/:id/days/:date/slots/:time", api.DeleteInstance)
			auth.PUT("/habits/:id/days/:date/schedule", api.SetDayOverride)
			auth.DELETE("/habits/:id/days/:date/schedule", api.ClearDayOverride)

			auth.POST("/cache/clear", api.ClearCaches)
		}
	}

	return r
}

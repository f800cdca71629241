package handler

import (
	"net/http"

	"time-tracker/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Register mounts the API on api. Reads are open to anonymous callers, who
// see demo data; writes need a signed in user.
func Register(api *gin.RouterGroup, th *TimeHandler, ah *AIHandler, events http.Handler) {
	api.GET("/workdays", th.ListWorkDays)
	api.GET("/workdays/month", th.MonthWorkDays)
	api.GET("/workdays/recent", th.RecentWorkDays)
	api.GET("/daily-total", th.DailyTotal)
	api.GET("/projects", th.ListProjects)
	api.GET("/ai/usage", ah.Usage)
	api.GET("/ai/summary", ah.GetSummary)
	api.POST("/ai/summary", ah.GenerateSummary)
	if events != nil {
		api.GET("/events", gin.WrapH(events))
	}

	write := api.Group("", middleware.RequireUser())
	write.POST("/entries", th.AddEntry)
	write.DELETE("/entries/:id", th.DeleteEntry)
	write.POST("/projects", th.CreateProject)
	write.POST("/projects/:id/archive", th.ArchiveProject)
	write.POST("/projects/:id/unarchive", th.UnarchiveProject)
	write.DELETE("/projects/:id", th.DeleteProject)
	write.DELETE("/ai/summary", ah.ClearSummary)
}

package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"time-tracker/internal/middleware"
	"time-tracker/internal/model"
	"time-tracker/internal/sse"
	"time-tracker/internal/timecalc"

	"github.com/gin-gonic/gin"
)

const (
	dateLayout  = "2006-01-02"
	defaultDays = 7
	maxDays     = 90
)

// TimeTracking is the time tracking service as seen by the HTTP layer.
type TimeTracking interface {
	GetWorkDays(ctx context.Context, user model.UserContext) []model.WorkDay
	GetWorkDaysForMonth(ctx context.Context, user model.UserContext, year int, month time.Month) []model.WorkDay
	GetWorkDaysForLastNDays(ctx context.Context, user model.UserContext, days int) []model.WorkDay
	GetRoundedDailyTotal(ctx context.Context, user model.UserContext, date time.Time) float64
	AddTimeEntry(ctx context.Context, user model.UserContext, entry model.TimeEntry) bool
	DeleteTimeEntry(ctx context.Context, user model.UserContext, id int) bool
	GetProjects(ctx context.Context, user model.UserContext) []model.Project
	CreateProject(ctx context.Context, user model.UserContext, name string) *model.Project
	ArchiveProject(ctx context.Context, id int)
	UnarchiveProject(ctx context.Context, id int)
	DeleteProject(ctx context.Context, id int)
}

// Publisher receives data-change events for live clients.
type Publisher interface {
	Publish(ev sse.Event)
}

type TimeHandler struct {
	svc    TimeTracking
	events Publisher
	now    func() time.Time
}

func NewTimeHandler(svc TimeTracking, events Publisher) *TimeHandler {
	return &TimeHandler{svc: svc, events: events, now: time.Now}
}

func (h *TimeHandler) ListWorkDays(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.GetWorkDays(c.Request.Context(), middleware.User(c)))
}

func (h *TimeHandler) MonthWorkDays(c *gin.Context) {
	today := h.now()
	year, err := queryInt(c, "year", today.Year())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return
	}
	month, err := queryInt(c, "month", int(today.Month()))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
		return
	}
	c.JSON(http.StatusOK, h.svc.GetWorkDaysForMonth(c.Request.Context(), middleware.User(c), year, time.Month(month)))
}

func (h *TimeHandler) RecentWorkDays(c *gin.Context) {
	days, err := queryInt(c, "days", defaultDays)
	if err != nil || days < 1 || days > maxDays {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 90"})
		return
	}
	c.JSON(http.StatusOK, h.svc.GetWorkDaysForLastNDays(c.Request.Context(), middleware.User(c), days))
}

func (h *TimeHandler) DailyTotal(c *gin.Context) {
	date := timecalc.DateOf(h.now())
	if raw := c.Query("date"); raw != "" {
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		date = d
	}
	hours := h.svc.GetRoundedDailyTotal(c.Request.Context(), middleware.User(c), date)
	c.JSON(http.StatusOK, model.DailyTotal{Date: date.Format(dateLayout), Hours: hours})
}

func (h *TimeHandler) AddEntry(c *gin.Context) {
	var req model.AddEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	date, err := time.Parse(dateLayout, req.WorkDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "work_date must be YYYY-MM-DD"})
		return
	}

	entry := model.TimeEntry{
		ProjectID:   req.ProjectID,
		WorkDate:    date,
		HoursWorked: req.HoursWorked,
		Comment:     strings.TrimSpace(req.Comment),
		TicketURL:   model.NormalizeTicketURL(req.TicketURL),
	}
	if key := strings.TrimSpace(req.TicketKey); key != "" {
		entry.TicketKey = &key
	}

	user := middleware.User(c)
	if !h.svc.AddTimeEntry(c.Request.Context(), user, entry) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "time entry not saved"})
		return
	}
	h.entriesChanged(user, req.WorkDate)
	c.Status(http.StatusCreated)
}

func (h *TimeHandler) DeleteEntry(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	user := middleware.User(c)
	if !h.svc.DeleteTimeEntry(c.Request.Context(), user, id) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "time entry not deleted"})
		return
	}
	h.entriesChanged(user, "")
	c.Status(http.StatusNoContent)
}

func (h *TimeHandler) ListProjects(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.GetProjects(c.Request.Context(), middleware.User(c)))
}

func (h *TimeHandler) CreateProject(c *gin.Context) {
	var req model.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	p := h.svc.CreateProject(c.Request.Context(), middleware.User(c), req.Name)
	if p == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "project not created"})
		return
	}
	h.projectsChanged(p.ID)
	c.JSON(http.StatusCreated, p)
}

func (h *TimeHandler) ArchiveProject(c *gin.Context) {
	h.projectAction(c, h.svc.ArchiveProject)
}

func (h *TimeHandler) UnarchiveProject(c *gin.Context) {
	h.projectAction(c, h.svc.UnarchiveProject)
}

func (h *TimeHandler) DeleteProject(c *gin.Context) {
	h.projectAction(c, h.svc.DeleteProject)
}

func (h *TimeHandler) projectAction(c *gin.Context, action func(context.Context, int)) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	action(c.Request.Context(), id)
	h.projectsChanged(id)
	c.Status(http.StatusNoContent)
}

func (h *TimeHandler) entriesChanged(user model.UserContext, date string) {
	userID, ok := model.UserID(user)
	if h.events == nil || !ok {
		return
	}
	h.events.Publish(sse.Event{Type: sse.TypeEntriesChanged, Data: map[string]string{"date": date}, UserID: userID})
}

// projects are shared, so everyone hears about them
func (h *TimeHandler) projectsChanged(id int) {
	if h.events == nil {
		return
	}
	h.events.Publish(sse.Event{Type: sse.TypeProjectChanged, Data: map[string]int{"id": id}, All: true})
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

package model

import "time"

type AddEntryRequest struct {
	ProjectID   int     `json:"project_id" binding:"required"`
	WorkDate    string  `json:"work_date" binding:"required"`
	HoursWorked float64 `json:"hours_worked"`
	Comment     string  `json:"comment"`
	TicketKey   string  `json:"ticket_key"`
	TicketURL   string  `json:"ticket_url"`
}

type CreateProjectRequest struct {
	Name string `json:"name" binding:"required"`
}

type ChatStatus string

const (
	ChatOK            ChatStatus = "ok"
	ChatRateLimited   ChatStatus = "rate_limited"
	ChatQuotaExceeded ChatStatus = "quota_exceeded"
	ChatFailed        ChatStatus = "failed"
)

type ChatResult struct {
	Status ChatStatus `json:"status"`
	Text   string     `json:"text"`
}

func (r ChatResult) OK() bool { return r.Status == ChatOK }

type UsageInfo struct {
	CallsThisMonth   int `json:"calls_this_month"`
	MaxCallsPerMonth int `json:"max_calls_per_month"`
}

type SummaryResponse struct {
	Summary     string     `json:"summary"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

type ProjectHours struct {
	ProjectName string  `json:"project_name"`
	Hours       float64 `json:"hours"`
}

type DailyTotal struct {
	Date  string  `json:"date"`
	Hours float64 `json:"hours"`
}

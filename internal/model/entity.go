package model

import "time"

type Project struct {
	ID         int    `gorm:"primaryKey" json:"id"`
	Name       string `gorm:"size:200;not null" json:"name"`
	UserID     string `gorm:"size:64;index" json:"user_id,omitempty"`
	IsArchived bool   `gorm:"not null;default:false" json:"is_archived"`
}

// WorkDay groups one user's entries for one calendar date. Date is always
// UTC midnight.
type WorkDay struct {
	ID          int         `gorm:"primaryKey" json:"id"`
	UserID      string      `gorm:"size:64;not null;uniqueIndex:uk_user_date" json:"user_id"`
	Date        time.Time   `gorm:"type:date;not null;uniqueIndex:uk_user_date" json:"date"`
	TimeEntries []TimeEntry `gorm:"foreignKey:WorkDayID;constraint:OnDelete:CASCADE" json:"time_entries"`
}

type TimeEntry struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	WorkDayID   int       `gorm:"index;not null" json:"work_day_id"`
	ProjectID   int       `gorm:"index;not null" json:"project_id"`
	Project     *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	HoursWorked float64   `gorm:"type:decimal(5,2);not null" json:"hours_worked"`
	WorkDate    time.Time `gorm:"type:date;index;not null" json:"work_date"`
	Comment     string    `gorm:"size:1000" json:"comment"`
	TicketKey   *string   `gorm:"size:64" json:"ticket_key,omitempty"`
	TicketURL   *string   `gorm:"size:512" json:"ticket_url,omitempty"`
	LoggedAt    time.Time `json:"logged_at"`
	UserID      string    `gorm:"size:64;index" json:"user_id"`
}

func (e TimeEntry) DurationMinutes() float64 { return e.HoursWorked * 60 }

// ProjectName falls back to a placeholder when the project was not loaded.
func (e TimeEntry) ProjectName() string {
	if e.Project == nil || e.Project.Name == "" {
		return UnknownProject
	}
	return e.Project.Name
}

const UnknownProject = "Unknown project"

// AiUsageLog is append-only and only ever counted.
type AiUsageLog struct {
	ID            int       `gorm:"primaryKey" json:"id"`
	Timestamp     time.Time `gorm:"index;not null" json:"timestamp"`
	UserID        string    `gorm:"size:64" json:"user_id"`
	PromptSnippet string    `gorm:"size:200" json:"prompt_snippet"`
}

type AiSummary struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"size:64;not null;uniqueIndex" json:"user_id"`
	Summary     string    `gorm:"type:text" json:"summary"`
	LastUpdated time.Time `json:"last_updated"`
}

func (Project) TableName() string    { return "projects" }
func (WorkDay) TableName() string    { return "work_days" }
func (TimeEntry) TableName() string  { return "time_entries" }
func (AiUsageLog) TableName() string { return "ai_usage_logs" }
func (AiSummary) TableName() string  { return "ai_summaries" }

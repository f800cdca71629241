package model

import (
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func validEntry() TimeEntry {
	return TimeEntry{
		ProjectID:   1,
		HoursWorked: 2.5,
		WorkDate:    time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestDurationMinutes(t *testing.T) {
	for _, h := range []float64{0.25, 1, 2.5, 7.75, 24} {
		e := TimeEntry{HoursWorked: h}
		assert.InDelta(t, h*60, e.DurationMinutes(), 1e-9)
	}
}

func TestProjectName(t *testing.T) {
	assert.Equal(t, UnknownProject, TimeEntry{}.ProjectName())
	assert.Equal(t, "P1", TimeEntry{Project: &Project{Name: "P1"}}.ProjectName())
}

func TestTimeEntryValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*TimeEntry)
		field  string
	}{
		{"valid", func(*TimeEntry) {}, ""},
		{"zero hours", func(e *TimeEntry) { e.HoursWorked = 0 }, "hours_worked"},
		{"negative hours", func(e *TimeEntry) { e.HoursWorked = -1 }, "hours_worked"},
		{"too many hours", func(e *TimeEntry) { e.HoursWorked = 24.5 }, "hours_worked"},
		{"exactly 24 hours", func(e *TimeEntry) { e.HoursWorked = 24 }, ""},
		{"no project", func(e *TimeEntry) { e.ProjectID = 0 }, "project_id"},
		{"url without key", func(e *TimeEntry) { e.TicketURL = strPtr("https://jira/T-1") }, "ticket_key"},
		{"url with key", func(e *TimeEntry) {
			e.TicketURL = strPtr("https://jira/T-1")
			e.TicketKey = strPtr("T-1")
		}, ""},
		{"relative url", func(e *TimeEntry) {
			e.TicketURL = strPtr("jira/T-1")
			e.TicketKey = strPtr("T-1")
		}, "ticket_url"},
		{"key too long", func(e *TimeEntry) {
			k := make([]byte, MaxTicketKeyLen+1)
			for i := range k {
				k[i] = 'k'
			}
			e.TicketKey = strPtr(string(k))
		}, "ticket_key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEntry()
			tt.mutate(&e)
			err := e.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var errs validation.Errors
			require.ErrorAs(t, err, &errs)
			assert.Contains(t, errs, tt.field)
		})
	}
}

func TestProjectValidate(t *testing.T) {
	assert.NoError(t, Project{Name: "Migration"}.Validate())
	assert.Error(t, Project{Name: ""}.Validate())
}

func TestNormalizeTicketURL(t *testing.T) {
	tests := []struct {
		in   string
		want *string
	}{
		{"example.com/T-1", strPtr("https://example.com/T-1")},
		{"//example.com", strPtr("https://example.com")},
		{"  http://jira.local/browse/X-9  ", strPtr("http://jira.local/browse/X-9")},
		{"https://example.com", strPtr("https://example.com")},
		{"not a url", nil},
		{"   ", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTicketURL(tt.in))
		})
	}
}

func TestUserContext(t *testing.T) {
	assert.Equal(t, Anonymous{}, UserFromID(""))
	assert.Equal(t, Anonymous{}, UserFromID("  "))
	assert.Equal(t, Authenticated{ID: "u1"}, UserFromID("u1"))

	id, ok := UserID(Authenticated{ID: "u1"})
	assert.True(t, ok)
	assert.Equal(t, "u1", id)

	_, ok = UserID(Anonymous{})
	assert.False(t, ok)

	assert.Equal(t, DemoUser, AuditName(Anonymous{}))
	assert.Equal(t, "u1", AuditName(Authenticated{ID: "u1"}))
}

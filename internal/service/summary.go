package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"time-tracker/internal/model"
)

// SummaryDays is the window a generated summary covers.
const SummaryDays = 7

// SummaryState holds the summary currently shown per user and tells
// subscribers when it changes. An empty text means cleared.
type SummaryState struct {
	mu      sync.RWMutex
	current map[string]string
	next    int
	subs    map[int]func(userID, text string)
}

func NewSummaryState() *SummaryState {
	return &SummaryState{current: make(map[string]string), subs: make(map[int]func(string, string))}
}

func (s *SummaryState) Get(userID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.current[userID]
	return text, ok
}

func (s *SummaryState) Set(userID, text string) {
	s.mu.Lock()
	s.current[userID] = text
	s.mu.Unlock()
	s.emit(userID, text)
}

func (s *SummaryState) Clear(userID string) {
	s.mu.Lock()
	_, had := s.current[userID]
	delete(s.current, userID)
	s.mu.Unlock()
	if had {
		s.emit(userID, "")
	}
}

// OnChange registers fn and returns a func that removes it.
func (s *SummaryState) OnChange(fn func(userID, text string)) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *SummaryState) emit(userID, text string) {
	s.mu.RLock()
	fns := make([]func(string, string), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(userID, text)
	}
}

// SummaryService turns the last week of work into an AI summary and caches it.
type SummaryService struct {
	tracking *TimeTrackingService
	ai       *AIService
	state    *SummaryState
}

func NewSummaryService(tracking *TimeTrackingService, ai *AIService, state *SummaryState) *SummaryService {
	return &SummaryService{tracking: tracking, ai: ai, state: state}
}

// Current returns the summary to display: the in-memory one if present,
// otherwise the stored one.
func (s *SummaryService) Current(ctx context.Context, user model.UserContext) string {
	userID, ok := model.UserID(user)
	if !ok {
		return ""
	}
	if text, ok := s.state.Get(userID); ok {
		return text
	}
	if cached := s.ai.GetCachedSummary(ctx, userID); cached != nil {
		s.state.Set(userID, cached.Summary)
		return cached.Summary
	}
	return ""
}

// Generate always asks the assistant. Only successful answers for signed in
// users are cached.
func (s *SummaryService) Generate(ctx context.Context, user model.UserContext) model.ChatResult {
	days := s.tracking.GetWorkDaysForLastNDays(ctx, user, SummaryDays)
	res := s.ai.GetChatResponse(ctx, user, BuildSummaryPrompt(days))
	userID, ok := model.UserID(user)
	if !res.OK() || !ok {
		return res
	}
	s.ai.SaveOrUpdateSummary(ctx, userID, res.Text)
	s.state.Set(userID, res.Text)
	return res
}

// BuildSummaryPrompt lists days oldest first with per-entry project, hours
// and comment.
func BuildSummaryPrompt(days []model.WorkDay) string {
	if len(days) == 0 {
		return "I have not logged any time in the last week."
	}
	var sb strings.Builder
	sb.WriteString("Here is my logged time for the last week:\n")
	for i := len(days) - 1; i >= 0; i-- {
		wd := days[i]
		var total float64
		fmt.Fprintf(&sb, "\n%s (%s):\n", wd.Date.Format("2006-01-02"), wd.Date.Weekday())
		for _, e := range wd.TimeEntries {
			total += e.HoursWorked
			fmt.Fprintf(&sb, "- %s: %gh", e.ProjectName(), e.HoursWorked)
			if c := strings.TrimSpace(e.Comment); c != "" {
				fmt.Fprintf(&sb, " (%s)", c)
			}
			if e.TicketKey != nil && *e.TicketKey != "" {
				fmt.Fprintf(&sb, " [%s]", *e.TicketKey)
			}
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "Total: %gh\n", total)
	}
	return sb.String()
}

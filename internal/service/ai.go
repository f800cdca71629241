package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"time-tracker/internal/llm"
	"time-tracker/internal/model"
	"time-tracker/internal/ratelimit"
	"time-tracker/internal/repo"
	"time-tracker/internal/safeexec"
	"time-tracker/internal/timecalc"
)

const (
	MsgRateLimited   = "Please wait a few seconds before asking the assistant again."
	MsgQuotaExceeded = "The monthly AI quota has been used up. Try again next month."
	MsgChatFailed    = "Something went wrong while talking to the assistant. Please try again later."

	maxSnippetLen   = 200
	assistantPrefix = "Assistant:"
)

const summarySystemPrompt = `You are a professional assistant helping the user answer their manager's question: "What did you do this week?"

For each day:
- Write a paragraph in the first person describing what the user worked on.
- Include project names, number of hours and relevant comments.
- Finish each paragraph with the day's total time.
- Keep a friendly, clear tone.

Use a bullet list where it reads better, but write as if to a colleague or manager.`

type AIConfig struct {
	MaxCallsPerMonth int
}

type AIService struct {
	llm       llm.Client
	limiter   ratelimit.Limiter
	usage     repo.UsageRepo
	summaries repo.SummaryRepo
	state     *SummaryState
	exec      *safeexec.Executor
	cfg       AIConfig
	now       func() time.Time
}

func NewAIService(client llm.Client, limiter ratelimit.Limiter, usage repo.UsageRepo, summaries repo.SummaryRepo,
	state *SummaryState, exec *safeexec.Executor, cfg AIConfig) *AIService {
	return &AIService{
		llm: client, limiter: limiter, usage: usage, summaries: summaries,
		state: state, exec: exec, cfg: cfg, now: time.Now,
	}
}

// GetChatResponse asks the assistant for prompt, subject to the global rate
// limit and the monthly quota. Usage is attributed to user.
func (s *AIService) GetChatResponse(ctx context.Context, user model.UserContext, prompt string) model.ChatResult {
	failed := model.ChatResult{Status: model.ChatFailed, Text: MsgChatFailed}
	return safeexec.Value(ctx, s.exec, "GetChatResponse", failed, func(ctx context.Context) (model.ChatResult, error) {
		allowed, err := s.limiter.Allow(ctx, ratelimit.GlobalKey)
		if err != nil {
			return failed, err
		}
		if !allowed {
			return model.ChatResult{Status: model.ChatRateLimited, Text: MsgRateLimited}, nil
		}

		count, err := s.usage.CountSince(ctx, s.monthStart())
		if err != nil {
			return failed, fmt.Errorf("count usage: %w", err)
		}
		if count >= int64(s.cfg.MaxCallsPerMonth) {
			return model.ChatResult{Status: model.ChatQuotaExceeded, Text: MsgQuotaExceeded}, nil
		}

		if err := s.limiter.Mark(ctx, ratelimit.GlobalKey); err != nil {
			return failed, err
		}
		raw, err := s.llm.Complete(ctx, summarySystemPrompt, prompt)
		if err != nil {
			return failed, err
		}
		s.logUsage(ctx, user, prompt)
		return model.ChatResult{Status: model.ChatOK, Text: cleanResponse(raw)}, nil
	})
}

// logUsage failures are reported but do not discard an answer already paid for.
func (s *AIService) logUsage(ctx context.Context, user model.UserContext, prompt string) {
	s.exec.Run(ctx, "LogAIUsage", func(ctx context.Context) error {
		return s.usage.Append(ctx, &model.AiUsageLog{
			Timestamp:     s.now().UTC(),
			UserID:        model.AuditName(user),
			PromptSnippet: truncate(prompt, maxSnippetLen),
		})
	})
}

func (s *AIService) GetUsageInfo(ctx context.Context) model.UsageInfo {
	info := model.UsageInfo{MaxCallsPerMonth: s.cfg.MaxCallsPerMonth}
	return safeexec.Value(ctx, s.exec, "GetUsageInfo", info, func(ctx context.Context) (model.UsageInfo, error) {
		n, err := s.usage.CountSince(ctx, s.monthStart())
		if err != nil {
			return info, err
		}
		return model.UsageInfo{CallsThisMonth: int(n), MaxCallsPerMonth: s.cfg.MaxCallsPerMonth}, nil
	})
}

// GetCachedSummary returns nil when no summary is stored.
func (s *AIService) GetCachedSummary(ctx context.Context, userID string) *model.AiSummary {
	return safeexec.Value(ctx, s.exec, "GetCachedSummary", (*model.AiSummary)(nil), func(ctx context.Context) (*model.AiSummary, error) {
		return s.summaries.Get(ctx, userID)
	})
}

func (s *AIService) SaveOrUpdateSummary(ctx context.Context, userID, text string) bool {
	return s.exec.Run(ctx, "SaveOrUpdateSummary", func(ctx context.Context) error {
		return s.summaries.Upsert(ctx, &model.AiSummary{UserID: userID, Summary: text, LastUpdated: s.now().UTC()})
	})
}

func (s *AIService) ClearCachedSummary(ctx context.Context, userID string) bool {
	return s.exec.Run(ctx, "ClearCachedSummary", func(ctx context.Context) error {
		return s.InvalidateSummary(ctx, userID)
	})
}

// InvalidateSummary drops both the stored and the in-memory summary.
func (s *AIService) InvalidateSummary(ctx context.Context, userID string) error {
	if s.state != nil {
		s.state.Clear(userID)
	}
	if err := s.summaries.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete summary: %w", err)
	}
	return nil
}

func (s *AIService) monthStart() time.Time {
	now := s.now().UTC()
	return timecalc.MonthStart(now.Year(), now.Month())
}

func cleanResponse(raw string) string {
	text := strings.TrimSpace(raw)
	if len(text) >= len(assistantPrefix) && strings.EqualFold(text[:len(assistantPrefix)], assistantPrefix) {
		text = strings.TrimSpace(text[len(assistantPrefix):])
	}
	return text
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

package insights

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"spendsight/internal/ai"
	"spendsight/internal/core"
	"spendsight/internal/store"
)

// ErrEmptyQuestion rejects chat requests with no question text.
var ErrEmptyQuestion = errors.New("question must not be empty")

const (
	defaultGenerateTimeout = 20 * time.Second
	historyLimit           = 20
)

// Service answers the insight operations. The generator is optional: a nil
// generator means every response is rule-based.
type Service struct {
	analyzer *Analyzer
	gen      ai.Generator
	digests  store.DigestStore
	timeout  time.Duration
	logger   *slog.Logger
}

func NewService(analyzer *Analyzer, gen ai.Generator, digests store.DigestStore) *Service {
	return &Service{
		analyzer: analyzer,
		gen:      gen,
		digests:  digests,
		timeout:  defaultGenerateTimeout,
		logger:   slog.Default().With("component", "insights"),
	}
}

// InsightsResponse is the full insight generation result. RawData carries
// the snapshot the narratives were derived from so clients can display the
// underlying figures.
type InsightsResponse struct {
	Message   string        `json:"message"`
	Insights  *Insight      `json:"insights"`
	RawData   *SpendingData `json:"rawData"`
	AIPowered bool          `json:"aiPowered"`
	Provider  string        `json:"provider,omitempty"`
	Note      string        `json:"note,omitempty"`
}

// Insights generates the four-part narrative for an owner. The collaborator
// path is strictly best-effort: any provider or parse failure degrades to
// the deterministic fallback with a note, never to an error response.
func (s *Service) Insights(ctx context.Context, owner string) (*InsightsResponse, error) {
	data, err := s.analyzer.Analyze(ctx, owner)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return &InsightsResponse{
			Message: "No expense data available. Start logging expenses to get insights.",
		}, nil
	}

	if s.gen != nil {
		if in, ok := s.generate(ctx, owner, InsightsPrompt(data)); ok {
			return &InsightsResponse{
				Message:   fmt.Sprintf("AI-powered insights generated by %s", s.gen.Name()),
				Insights:  in,
				RawData:   data,
				AIPowered: true,
				Provider:  s.gen.Name(),
			}, nil
		}
		fb := FallbackInsight(data)
		return &InsightsResponse{
			Message:  "AI insights unavailable, showing analytical insights",
			Insights: &fb,
			RawData:  data,
			Note:     "AI request failed, using fallback analysis",
		}, nil
	}

	fb := FallbackInsight(data)
	return &InsightsResponse{
		Message:  "Analysis complete",
		Insights: &fb,
		RawData:  data,
		Note:     "No AI API key configured. Set GEMINI_API_KEY or ANTHROPIC_API_KEY to enable AI insights.",
	}, nil
}

func (s *Service) generate(ctx context.Context, owner, prompt string) (*Insight, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		s.logger.WarnContext(ctx, "insight generation failed", "owner", owner, "provider", s.gen.Name(), "error", err)
		return nil, false
	}
	in, ok := ParseInsight(text)
	if !ok {
		s.logger.WarnContext(ctx, "unparsable insight response", "owner", owner, "provider", s.gen.Name())
		return nil, false
	}
	return &in, true
}

// ChatResponse is one chat answer.
type ChatResponse struct {
	Response  string `json:"response"`
	AIPowered bool   `json:"aiPowered"`
	Provider  string `json:"provider,omitempty"`
}

// Chat answers a free-form question about the owner's spending. With a
// working generator the answer comes from the data-grounded prompt;
// otherwise the intent router produces a deterministic answer.
func (s *Service) Chat(ctx context.Context, owner, question string) (*ChatResponse, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}

	data, err := s.analyzer.Analyze(ctx, owner)
	if err != nil {
		return nil, err
	}

	if s.gen != nil {
		genCtx, cancel := context.WithTimeout(ctx, s.timeout)
		text, err := s.gen.Generate(genCtx, ChatPrompt(data, question))
		cancel()
		if err == nil && strings.TrimSpace(text) != "" {
			return &ChatResponse{Response: text, AIPowered: true, Provider: s.gen.Name()}, nil
		}
		if err != nil {
			s.logger.WarnContext(ctx, "chat generation failed", "owner", owner, "provider", s.gen.Name(), "error", err)
		}
	}

	return &ChatResponse{Response: ChatFallback(question, data)}, nil
}

// History lists stored insight digests for an owner, newest first.
func (s *Service) History(ctx context.Context, owner string) ([]core.InsightDigest, error) {
	digests, err := s.digests.ListDigests(ctx, owner, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("list digests: %w", err)
	}
	return digests, nil
}

// Digest regenerates the rule-based insight bundle from current data and
// returns it as a storable digest. The worker calls this on expense-change
// events. ok is false when the owner has no data to digest.
func (s *Service) Digest(ctx context.Context, owner string, now time.Time) (core.InsightDigest, bool, error) {
	data, err := s.analyzer.Analyze(ctx, owner)
	if err != nil {
		return core.InsightDigest{}, false, err
	}
	if data == nil {
		return core.InsightDigest{}, false, nil
	}
	in := FallbackInsight(data)
	return core.InsightDigest{
		Owner:           owner,
		Month:           core.CurrentMonth(now),
		Anomalies:       in.Anomalies,
		Trends:          in.Trends,
		Recommendations: in.Recommendations,
		Savings:         in.Savings,
		Provider:        "rules",
		GeneratedAt:     now,
	}, true, nil
}

package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/normativa/internal/core/domain"
	"github.com/custodia-labs/normativa/internal/core/ports/driving"
	"github.com/custodia-labs/normativa/internal/logger"
)

// Ensure EvalService implements the interface.
var _ driving.EvalService = (*EvalService)(nil)

// EvalColumns is the header of the results CSV.
var EvalColumns = []string{
	"line", "question", "expected", "answer", "em", "latency", "provider", "model", "expected_refs",
}

// maxGoldLine bounds one JSONL line of the gold file.
const maxGoldLine = 1 << 20

// EvalService runs a gold question set through the grounded ask path.
type EvalService struct {
	ask     driving.AskService
	limiter *rate.Limiter
	now     func() time.Time
}

// NewEvalService creates an evaluation service. Generation calls are limited
// to ratePerSecond; zero or less disables the limit.
func NewEvalService(ask driving.AskService, ratePerSecond float64) *EvalService {
	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}
	return &EvalService{
		ask:     ask,
		limiter: rate.NewLimiter(limit, 1),
		now:     time.Now,
	}
}

// Run asks every gold item and writes one CSV row per item.
// A malformed line or a failed generation stops the run; rows already
// evaluated are flushed first.
func (s *EvalService) Run(ctx context.Context, r io.Reader, w io.Writer, opts domain.EvalOptions) (*domain.EvalSummary, error) {
	out := csv.NewWriter(w)
	defer out.Flush()
	if err := out.Write(EvalColumns); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	summary := &domain.EvalSummary{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxGoldLine)

	line := 0
	for scanner.Scan() {
		line++
		if opts.Limit > 0 && summary.Total >= opts.Limit {
			break
		}
		raw := scanner.Bytes()
		if line == 1 {
			raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 {
			continue
		}

		item, err := ParseEvalItem(line, raw)
		if err != nil {
			return summary, err
		}

		result, err := s.evaluate(ctx, item, opts)
		if err != nil {
			return summary, fmt.Errorf("line %d: %w", line, err)
		}

		summary.Total++
		if result.Match {
			summary.Matches++
		}
		if err := out.Write(evalRow(result)); err != nil {
			return summary, fmt.Errorf("write row %d: %w", line, err)
		}
		out.Flush()
		logger.Info("[Q%d] em=%t latency=%.2fs", line, result.Match, result.Latency)
	}
	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("read gold file: %w", err)
	}

	out.Flush()
	if err := out.Error(); err != nil {
		return summary, fmt.Errorf("write results: %w", err)
	}
	return summary, nil
}

func (s *EvalService) evaluate(ctx context.Context, item domain.EvalItem, opts domain.EvalOptions) (domain.EvalResult, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return domain.EvalResult{}, err
	}

	start := s.now()
	resp, err := s.ask.Ask(ctx, domain.AskRequest{
		Question: item.Question,
		K:        opts.K,
		UseRAG:   true,
		Provider: opts.Provider,
		Model:    opts.Model,
	})
	if err != nil {
		return domain.EvalResult{}, err
	}
	latency := s.now().Sub(start).Seconds()

	return domain.EvalResult{
		Item:     item,
		Answer:   resp.Answer,
		Match:    ExactMatch(item.Expected, resp.Answer),
		Latency:  latency,
		Provider: resp.Provider,
		Model:    resp.Model,
	}, nil
}

// ExactMatch reports whether the case-folded expected text appears in the answer.
// An empty expectation always matches.
func ExactMatch(expected, answer string) bool {
	folder := cases.Fold()
	return strings.Contains(folder.String(answer), folder.String(expected))
}

// ParseEvalItem decodes one gold line. Both the short (q, a, refs) and the
// long (question, expected_answer, expected_doc) keys are accepted.
func ParseEvalItem(line int, raw []byte) (domain.EvalItem, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domain.EvalItem{}, fmt.Errorf("%w: invalid JSON on line %d: %v", domain.ErrInvalidInput, line, err)
	}

	item := domain.EvalItem{
		Line:     line,
		Question: firstString(fields, "q", "question"),
		Expected: firstString(fields, "a", "expected_answer"),
	}
	if item.Question == "" {
		return domain.EvalItem{}, fmt.Errorf("%w: missing 'q'/'question' on line %d", domain.ErrInvalidInput, line)
	}

	switch refs := fields["refs"].(type) {
	case []any:
		parts := make([]string, 0, len(refs))
		for _, ref := range refs {
			parts = append(parts, fmt.Sprint(ref))
		}
		item.ExpectedRefs = strings.Join(parts, "; ")
	case string:
		item.ExpectedRefs = refs
	case nil:
		item.ExpectedRefs = firstString(fields, "expected_doc")
	default:
		item.ExpectedRefs = fmt.Sprint(refs)
	}
	return item, nil
}

func firstString(fields map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := fields[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func evalRow(r domain.EvalResult) []string {
	em := "0"
	if r.Match {
		em = "1"
	}
	return []string{
		strconv.Itoa(r.Item.Line),
		r.Item.Question,
		r.Item.Expected,
		r.Answer,
		em,
		strconv.FormatFloat(r.Latency, 'f', 2, 64),
		r.Provider,
		r.Model,
		r.Item.ExpectedRefs,
	}
}

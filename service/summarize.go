package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kokonnect/konnect-back-sub000/model"
)

// Summarizer condenses the simplified text into a 3-5 sentence summary in
// the target language. Failure aborts the run.
type Summarizer struct {
	stageAudit
	gen *GenerationClient
}

func NewSummarizer(gen *GenerationClient) *Summarizer {
	return &Summarizer{gen: gen}
}

func (s *Summarizer) Process(ctx context.Context, simplified string, pctx *model.PipelineContext) (string, error) {
	start := time.Now()
	raw, mdl, err := s.gen.GenerateText(ctx, summarizePrompt(simplified, pctx.TargetLanguage), summarizeTemperature, summarizeMaxTokens, false)
	s.record(raw, mdl, time.Since(start))
	if err != nil {
		return "", err
	}

	summary := strings.TrimSpace(raw)
	if summary == "" {
		return "", fmt.Errorf("%w: empty summary output", ErrServiceUnavailable)
	}
	return summary, nil
}

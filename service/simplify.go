package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kokonnect/konnect-back-sub000/model"
)

// Simplifier rewrites the notice in plain Korean. Unlike the structured
// stages, a failure here aborts the run: translation and summary both
// build on the simplified text.
type Simplifier struct {
	stageAudit
	gen *GenerationClient
}

func NewSimplifier(gen *GenerationClient) *Simplifier {
	return &Simplifier{gen: gen}
}

func (s *Simplifier) Process(ctx context.Context, text string, pctx *model.PipelineContext) (string, error) {
	simpleMode, _ := pctx.Metadata["simple_mode"].(bool)

	start := time.Now()
	raw, mdl, err := s.gen.GenerateText(ctx, simplifyPrompt(text, simpleMode), simplifyTemperature, simplifyMaxTokens, false)
	s.record(raw, mdl, time.Since(start))
	if err != nil {
		return "", err
	}

	simplified := strings.TrimSpace(raw)
	if simplified == "" {
		return "", fmt.Errorf("%w: empty simplification output", ErrServiceUnavailable)
	}
	return simplified, nil
}

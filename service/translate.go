package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kokonnect/konnect-back-sub000/model"
)

// Translator renders the simplified Korean text in the user's target
// language. Failure aborts the run.
type Translator struct {
	stageAudit
	gen *GenerationClient
}

func NewTranslator(gen *GenerationClient) *Translator {
	return &Translator{gen: gen}
}

func (t *Translator) Process(ctx context.Context, simplified string, pctx *model.PipelineContext) (string, error) {
	start := time.Now()
	raw, mdl, err := t.gen.GenerateText(ctx, translatePrompt(simplified, pctx.TargetLanguage), translateTemperature, translateMaxTokens, false)
	t.record(raw, mdl, time.Since(start))
	if err != nil {
		return "", err
	}

	translated := strings.TrimSpace(raw)
	if translated == "" {
		return "", fmt.Errorf("%w: empty translation output", ErrServiceUnavailable)
	}
	return translated, nil
}

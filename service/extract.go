package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kokonnect/konnect-back-sub000/model"
	"github.com/kokonnect/konnect-back-sub000/pkg/jsonx"
)

// UnifiedExtractor pulls calendar events and other structured facts out of
// the notice in one call. It prefers the capable tier: date arithmetic and
// table reading is where the cheap model goes wrong. Like classification,
// extraction degrades to an empty result instead of aborting the run.
type UnifiedExtractor struct {
	stageAudit
	gen *GenerationClient
}

func NewUnifiedExtractor(gen *GenerationClient) *UnifiedExtractor {
	return &UnifiedExtractor{gen: gen}
}

func emptyExtraction() model.ExtractionResult {
	return model.ExtractionResult{
		Schedules:      []model.ScheduleItem{},
		AdditionalInfo: map[string]any{},
	}
}

func (e *UnifiedExtractor) Process(ctx context.Context, text string, pctx *model.PipelineContext) model.Result[model.ExtractionResult] {
	start := time.Now()
	raw, mdl, err := e.gen.GenerateText(ctx, extractPrompt(text), extractTemperature, extractMaxTokens, true)
	e.record(raw, mdl, time.Since(start))
	if err != nil {
		return model.Fallback(emptyExtraction(), err.Error())
	}

	var parsed model.ExtractionResult
	if err := json.Unmarshal([]byte(jsonx.ExtractObject(raw)), &parsed); err != nil {
		return model.Fallback(emptyExtraction(), "unparseable extraction output")
	}

	if parsed.Schedules == nil {
		parsed.Schedules = []model.ScheduleItem{}
	}
	// Drop rows the model invented without a title or start date.
	valid := parsed.Schedules[:0]
	for _, s := range parsed.Schedules {
		if s.Title == "" || s.StartDate == "" {
			continue
		}
		if s.EndDate == "" {
			s.EndDate = s.StartDate
		}
		valid = append(valid, s)
	}
	parsed.Schedules = valid

	if parsed.AdditionalInfo == nil {
		parsed.AdditionalInfo = map[string]any{}
	}
	return model.Ok(parsed)
}

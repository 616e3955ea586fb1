package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kokonnect/konnect-back-sub000/model"
	"github.com/kokonnect/konnect-back-sub000/pkg/jsonx"
)

// ExpressionExtractor lists hard-to-understand expressions from the notice
// with plain explanations in the target language. Degrades to an empty
// list on failure.
type ExpressionExtractor struct {
	stageAudit
	gen *GenerationClient
}

func NewExpressionExtractor(gen *GenerationClient) *ExpressionExtractor {
	return &ExpressionExtractor{gen: gen}
}

func (e *ExpressionExtractor) Process(ctx context.Context, text string, pctx *model.PipelineContext) model.Result[[]model.DifficultExpression] {
	start := time.Now()
	raw, mdl, err := e.gen.GenerateText(ctx, expressionsPrompt(text, pctx.TargetLanguage), expressionsTemperature, expressionsMaxTokens, false)
	e.record(raw, mdl, time.Since(start))
	if err != nil {
		return model.Fallback([]model.DifficultExpression{}, err.Error())
	}

	var parsed []model.DifficultExpression
	if err := json.Unmarshal([]byte(jsonx.ExtractArray(raw)), &parsed); err != nil {
		return model.Fallback([]model.DifficultExpression{}, "unparseable expression output")
	}

	result := make([]model.DifficultExpression, 0, len(parsed))
	for _, expr := range parsed {
		if expr.Original == "" {
			continue
		}
		result = append(result, expr)
		if len(result) == model.MaxDifficultExpressions {
			break
		}
	}
	return model.Ok(result)
}

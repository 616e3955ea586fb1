package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kokonnect/konnect-back-sub000/model"
	"github.com/kokonnect/konnect-back-sub000/pkg/jsonx"
)

// Classifier decides what kind of notice the document is. Classification
// is advisory: when the model is unreachable or emits garbage, the
// pipeline continues with a NOTICE default instead of aborting.
type Classifier struct {
	stageAudit
	gen *GenerationClient
}

func NewClassifier(gen *GenerationClient) *Classifier {
	return &Classifier{gen: gen}
}

func fallbackClassification() model.ClassificationResult {
	return model.ClassificationResult{
		DocumentType: model.DocumentTypeNotice,
		Confidence:   0.5,
		Keywords:     []string{},
		Reasoning:    "fallback",
	}
}

func (c *Classifier) Process(ctx context.Context, text string, pctx *model.PipelineContext) model.Result[model.ClassificationResult] {
	start := time.Now()
	raw, mdl, err := c.gen.GenerateText(ctx, classifyPrompt(text), classifyTemperature, classifyMaxTokens, false)
	c.record(raw, mdl, time.Since(start))
	if err != nil {
		return model.Fallback(fallbackClassification(), err.Error())
	}

	var parsed model.ClassificationResult
	if err := json.Unmarshal([]byte(jsonx.ExtractObject(raw)), &parsed); err != nil {
		return model.Fallback(fallbackClassification(), "unparseable classification output")
	}

	parsed.DocumentType = model.ParseDocumentType(string(parsed.DocumentType))
	if parsed.Confidence < 0 {
		parsed.Confidence = 0
	}
	if parsed.Confidence > 1 {
		parsed.Confidence = 1
	}
	if parsed.Keywords == nil {
		parsed.Keywords = []string{}
	}
	return model.Ok(parsed)
}

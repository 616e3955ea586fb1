package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kokonnect/konnect-back-sub000/model"
	"github.com/kokonnect/konnect-back-sub000/pkg/logger"
)

// stageInputPreview bounds how much stage input and raw output goes into
// the audit log.
const stageInputPreview = 500

// PipelineInput describes one uploaded document to analyze. AnalysisID
// may be pre-assigned by the caller; when empty one is generated.
type PipelineInput struct {
	AnalysisID     string
	Data           []byte
	Filename       string
	MimeType       string
	FileKind       string
	FileURL        string
	TargetLanguage model.TargetLanguage
	Metadata       map[string]any
}

// Orchestrator runs the analysis pipeline: text extraction, classification,
// structured extraction, difficult expressions, simplification, translation
// and summarization, in that order. The pipeline context is persisted to
// the cache after every attempted stage so a failed run can be retried from
// where it stopped instead of starting over.
type Orchestrator struct {
	gen         *GenerationClient
	extractor   *TextExtractor
	classifier  *Classifier
	unified     *UnifiedExtractor
	expressions *ExpressionExtractor
	simplifier  *Simplifier
	translator  *Translator
	summarizer  *Summarizer
	cache       *AnalysisCache
	store       *AnalysisStore
}

func NewOrchestrator(
	gen *GenerationClient,
	extractor *TextExtractor,
	classifier *Classifier,
	unified *UnifiedExtractor,
	expressions *ExpressionExtractor,
	simplifier *Simplifier,
	translator *Translator,
	summarizer *Summarizer,
	cache *AnalysisCache,
	store *AnalysisStore,
) *Orchestrator {
	return &Orchestrator{
		gen:         gen,
		extractor:   extractor,
		classifier:  classifier,
		unified:     unified,
		expressions: expressions,
		simplifier:  simplifier,
		translator:  translator,
		summarizer:  summarizer,
		cache:       cache,
		store:       store,
	}
}

// Analyze starts a fresh pipeline run for an uploaded document and returns
// the response: COMPLETED with all artifacts, or PARTIAL with whatever was
// produced plus the failed stage.
func (o *Orchestrator) Analyze(ctx context.Context, input *PipelineInput) (*model.AnalysisResponse, error) {
	analysisID := input.AnalysisID
	if analysisID == "" {
		analysisID = uuid.New().String()
	}

	pctx := model.NewPipelineContext(analysisID, input.TargetLanguage, input.Metadata)
	pctx.Source = &model.SourceFile{
		Data:     input.Data,
		MimeType: input.MimeType,
		Kind:     input.FileKind,
	}
	o.cache.Put(pctx)

	o.store.Save(&model.AnalysisRecord{
		ID:        analysisID,
		Filename:  input.Filename,
		FileURL:   input.FileURL,
		Status:    "processing",
		CreatedAt: time.Now(),
	})

	return o.run(ctx, pctx), nil
}

// Retry resumes a partially failed run. Stages whose artifacts already
// exist on the cached context are skipped; the run continues from the
// first missing one. An expired or unknown id is ErrAnalysisNotFound.
func (o *Orchestrator) Retry(ctx context.Context, analysisID string) (*model.AnalysisResponse, error) {
	pctx, ok := o.cache.Get(analysisID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAnalysisNotFound, analysisID)
	}
	return o.run(ctx, pctx), nil
}

func (o *Orchestrator) run(ctx context.Context, pctx *model.PipelineContext) *model.AnalysisResponse {
	start := time.Now()
	ctx = context.WithValue(ctx, logger.AnalysisIDKey, pctx.AnalysisID)

	// Token counters cover one run, not the whole retry chain.
	o.gen.ResetSession()

	// Stage 1: text extraction
	if !stageDone(pctx, model.StageTextExtracted, pctx.OriginalText != "") {
		sctx := context.WithValue(ctx, logger.StageKey, model.StageNameTextExtraction)
		if pctx.Source == nil {
			err := fmt.Errorf("%w: source file no longer available", ErrTextExtractionFailed)
			o.auditFailure(pctx, model.StageNameTextExtraction, 1, "", err, 0)
			return o.partial(pctx, model.StageNameTextExtraction, err, start)
		}
		stageStart := time.Now()
		extracted, err := o.extractor.Extract(sctx, pctx.Source.Data, pctx.Source.MimeType, pctx.Source.Kind)
		if err != nil {
			o.auditFailure(pctx, model.StageNameTextExtraction, 1, "", err, time.Since(stageStart))
			logger.Error(sctx, "text extraction failed", "error", err)
			return o.partial(pctx, model.StageNameTextExtraction, err, start)
		}
		pctx.OriginalText = extracted.Text
		pctx.OCRMethod = extracted.Method
		pctx.PageCount = extracted.PageCount
		pctx.Source = nil // bytes are no longer needed for retries
		pctx.Advance(model.StageTextExtracted)
		pctx.AppendLog("text extracted via %s (%d pages)", extracted.Method, extracted.PageCount)
		o.cache.Put(pctx)
		entry := model.StageLog{
			Stage:        model.StageNameTextExtraction,
			Order:        1,
			ParsedResult: truncate(extracted.Text, stageInputPreview),
			Summary:      fmt.Sprintf("method=%s engine=%s pages=%d", extracted.Method, extracted.Engine, extracted.PageCount),
			DurationMS:   time.Since(stageStart).Milliseconds(),
			Status:       model.StageStatusSuccess,
		}
		if extracted.Engine == EngineGeminiVision {
			entry.PromptID = PromptIDOCR
			entry.Model = o.gen.ModelForTier(TierCapable)
			entry.Temperature = ocrTemperature
			entry.MaxTokens = ocrMaxTokens
		}
		o.store.AppendStageLog(pctx.AnalysisID, entry)
		logger.Info(sctx, "text extracted", "method", extracted.Method, "engine", extracted.Engine, "pages", extracted.PageCount, "chars", len(extracted.Text))
	} else {
		o.auditSkip(pctx, model.StageNameTextExtraction, 1)
	}

	// Stage 2: classification (degraded on failure, never aborts)
	if !stageDone(pctx, model.StageClassified, pctx.Classification != nil) {
		sctx := context.WithValue(ctx, logger.StageKey, model.StageNameClassification)
		res := o.classifier.Process(sctx, pctx.OriginalText, pctx)
		classification := res.Value
		pctx.Classification = &classification
		pctx.DocumentType = classification.DocumentType
		pctx.Advance(model.StageClassified)
		pctx.AppendLog("classified as %s (confidence %.2f)", classification.DocumentType, classification.Confidence)
		o.cache.Put(pctx)
		o.auditResult(pctx, model.StageNameClassification, 2, PromptIDClassify, classifyTemperature, classifyMaxTokens, &o.classifier.stageAudit,
			marshalPreview(classification), fmt.Sprintf("classified as %s (confidence %.2f)", classification.DocumentType, classification.Confidence), res.Degraded, res.Reason)
		logger.Info(sctx, "document classified", "type", classification.DocumentType, "degraded", res.Degraded)
	} else {
		o.auditSkip(pctx, model.StageNameClassification, 2)
	}

	// Stage 3: structured extraction (degraded on failure)
	if !stageDone(pctx, model.StageExtracted, pctx.Extraction != nil) {
		sctx := context.WithValue(ctx, logger.StageKey, model.StageNameExtraction)
		res := o.unified.Process(sctx, pctx.OriginalText, pctx)
		extraction := res.Value
		pctx.Extraction = &extraction
		pctx.Advance(model.StageExtracted)
		pctx.AppendLog("extracted %d schedules", len(extraction.Schedules))
		o.cache.Put(pctx)
		o.auditResult(pctx, model.StageNameExtraction, 3, PromptIDExtract, extractTemperature, extractMaxTokens, &o.unified.stageAudit,
			marshalPreview(extraction), fmt.Sprintf("%d schedules extracted", len(extraction.Schedules)), res.Degraded, res.Reason)
		logger.Info(sctx, "structured data extracted", "schedules", len(extraction.Schedules), "degraded", res.Degraded)
	} else {
		o.auditSkip(pctx, model.StageNameExtraction, 3)
	}

	// Stage 4: difficult expressions (degraded on failure)
	if !stageDone(pctx, model.StageDifficultExpressionsExtracted, pctx.DifficultExpressions != nil) {
		sctx := context.WithValue(ctx, logger.StageKey, model.StageNameExpressions)
		res := o.expressions.Process(sctx, pctx.OriginalText, pctx)
		pctx.DifficultExpressions = res.Value
		pctx.Advance(model.StageDifficultExpressionsExtracted)
		pctx.AppendLog("found %d difficult expressions", len(res.Value))
		o.cache.Put(pctx)
		o.auditResult(pctx, model.StageNameExpressions, 4, PromptIDExpressions, expressionsTemperature, expressionsMaxTokens, &o.expressions.stageAudit,
			marshalPreview(res.Value), fmt.Sprintf("%d difficult expressions found", len(res.Value)), res.Degraded, res.Reason)
		logger.Info(sctx, "difficult expressions extracted", "count", len(res.Value), "degraded", res.Degraded)
	} else {
		o.auditSkip(pctx, model.StageNameExpressions, 4)
	}

	// Stage 5: simplification (failure aborts the run)
	if !stageDone(pctx, model.StageSimplified, pctx.SimplifiedKorean != "") {
		sctx := context.WithValue(ctx, logger.StageKey, model.StageNameSimplification)
		simplified, err := o.simplifier.Process(sctx, pctx.OriginalText, pctx)
		if err != nil {
			o.auditFailure(pctx, model.StageNameSimplification, 5, o.simplifier.LastModel(), err, o.simplifier.LastDuration())
			logger.Error(sctx, "simplification failed", "error", err)
			return o.partial(pctx, model.StageNameSimplification, err, start)
		}
		pctx.SimplifiedKorean = simplified
		pctx.Advance(model.StageSimplified)
		pctx.AppendLog("simplified to %d chars", len(simplified))
		o.cache.Put(pctx)
		o.auditResult(pctx, model.StageNameSimplification, 5, PromptIDSimplify, simplifyTemperature, simplifyMaxTokens, &o.simplifier.stageAudit,
			truncate(simplified, stageInputPreview), fmt.Sprintf("simplified to %d chars", len(simplified)), false, "")
		logger.Info(sctx, "text simplified", "chars", len(simplified))
	} else {
		o.auditSkip(pctx, model.StageNameSimplification, 5)
	}

	// Stage 6: translation (failure aborts the run)
	if !stageDone(pctx, model.StageTranslated, pctx.TranslatedText != "") {
		sctx := context.WithValue(ctx, logger.StageKey, model.StageNameTranslation)
		translated, err := o.translator.Process(sctx, pctx.SimplifiedKorean, pctx)
		if err != nil {
			o.auditFailure(pctx, model.StageNameTranslation, 6, o.translator.LastModel(), err, o.translator.LastDuration())
			logger.Error(sctx, "translation failed", "error", err)
			return o.partial(pctx, model.StageNameTranslation, err, start)
		}
		pctx.TranslatedText = translated
		pctx.Advance(model.StageTranslated)
		pctx.AppendLog("translated to %s", pctx.TargetLanguage.Code)
		o.cache.Put(pctx)
		o.auditResult(pctx, model.StageNameTranslation, 6, PromptIDTranslate, translateTemperature, translateMaxTokens, &o.translator.stageAudit,
			truncate(translated, stageInputPreview), fmt.Sprintf("translated to %s, %d chars", pctx.TargetLanguage.Code, len(translated)), false, "")
		logger.Info(sctx, "text translated", "language", pctx.TargetLanguage.Code)
	} else {
		o.auditSkip(pctx, model.StageNameTranslation, 6)
	}

	// Stage 7: summarization (failure aborts the run)
	if !stageDone(pctx, model.StageSummarized, pctx.Summary != "") {
		sctx := context.WithValue(ctx, logger.StageKey, model.StageNameSummarization)
		summary, err := o.summarizer.Process(sctx, pctx.SimplifiedKorean, pctx)
		if err != nil {
			o.auditFailure(pctx, model.StageNameSummarization, 7, o.summarizer.LastModel(), err, o.summarizer.LastDuration())
			logger.Error(sctx, "summarization failed", "error", err)
			return o.partial(pctx, model.StageNameSummarization, err, start)
		}
		pctx.Summary = summary
		pctx.Advance(model.StageSummarized)
		pctx.AppendLog("summarized to %d chars", len(summary))
		o.cache.Put(pctx)
		o.auditResult(pctx, model.StageNameSummarization, 7, PromptIDSummarize, summarizeTemperature, summarizeMaxTokens, &o.summarizer.stageAudit,
			truncate(summary, stageInputPreview), fmt.Sprintf("summarized to %d chars", len(summary)), false, "")
		logger.Info(sctx, "text summarized", "chars", len(summary))
	} else {
		o.auditSkip(pctx, model.StageNameSummarization, 7)
	}

	pctx.Advance(model.StageCompleted)
	resp := o.buildResponse(pctx, model.StatusCompleted, "", "", start)
	o.cache.Invalidate(pctx.AnalysisID)
	o.store.SetResult(pctx.AnalysisID, resp)
	logger.Info(ctx, "analysis completed", "elapsed_ms", resp.ElapsedMS, "tokens", resp.TokenUsage.Total)
	return resp
}

// stageDone reports whether a stage can be skipped on retry: the progress
// marker must have reached it and its artifact must actually exist.
func stageDone(pctx *model.PipelineContext, marker model.Stage, populated bool) bool {
	return pctx.CompletedStage >= marker && populated
}

func (o *Orchestrator) partial(pctx *model.PipelineContext, failedStage string, err error, start time.Time) *model.AnalysisResponse {
	// Re-persist to restart the retry window from the failure.
	o.cache.Put(pctx)
	resp := o.buildResponse(pctx, model.StatusPartial, failedStage, err.Error(), start)
	o.store.SetResult(pctx.AnalysisID, resp)
	return resp
}

func (o *Orchestrator) buildResponse(pctx *model.PipelineContext, status, failedStage, errMsg string, start time.Time) *model.AnalysisResponse {
	return &model.AnalysisResponse{
		AnalysisID:           pctx.AnalysisID,
		Status:               status,
		DocumentType:         pctx.DocumentType,
		OriginalText:         pctx.OriginalText,
		SimplifiedKorean:     pctx.SimplifiedKorean,
		TranslatedText:       pctx.TranslatedText,
		Summary:              pctx.Summary,
		DifficultExpressions: pctx.DifficultExpressions,
		Classification:       pctx.Classification,
		Extraction:           pctx.Extraction,
		TargetLanguage:       pctx.TargetLanguage,
		OCRMethod:            pctx.OCRMethod,
		PageCount:            pctx.PageCount,
		FailedStage:          failedStage,
		Error:                errMsg,
		ElapsedMS:            time.Since(start).Milliseconds(),
		TokenUsage:           o.gen.Session(),
	}
}

func (o *Orchestrator) auditResult(pctx *model.PipelineContext, stage string, order int, promptID string, temperature float64, maxTokens int, audit *stageAudit, parsed, summary string, degraded bool, reason string) {
	status := model.StageStatusSuccess
	if degraded {
		status = model.StageStatusFallback
	}
	o.store.AppendStageLog(pctx.AnalysisID, model.StageLog{
		Stage:        stage,
		Order:        order,
		Input:        truncate(pctx.OriginalText, stageInputPreview),
		PromptID:     promptID,
		Model:        audit.LastModel(),
		Temperature:  temperature,
		MaxTokens:    maxTokens,
		RawResponse:  truncate(audit.LastRawResponse(), stageInputPreview),
		ParsedResult: parsed,
		Summary:      summary,
		DurationMS:   audit.LastDuration().Milliseconds(),
		Status:       status,
		Error:        reason,
	})
}

func (o *Orchestrator) auditFailure(pctx *model.PipelineContext, stage string, order int, modelName string, err error, d time.Duration) {
	o.store.AppendStageLog(pctx.AnalysisID, model.StageLog{
		Stage:      stage,
		Order:      order,
		Input:      truncate(pctx.OriginalText, stageInputPreview),
		Model:      modelName,
		DurationMS: d.Milliseconds(),
		Status:     model.StageStatusFailure,
		Error:      err.Error(),
	})
}

// marshalPreview renders a structured stage artifact as truncated JSON
// for the audit log.
func marshalPreview(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return truncate(string(b), stageInputPreview)
}

func (o *Orchestrator) auditSkip(pctx *model.PipelineContext, stage string, order int) {
	o.store.AppendStageLog(pctx.AnalysisID, model.StageLog{
		Stage:   stage,
		Order:   order,
		Summary: "artifact already present, stage skipped on retry",
		Status:  model.StageStatusSkip,
	})
}

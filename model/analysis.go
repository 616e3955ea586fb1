package model

import (
	"fmt"
	"time"
)

// DocumentType classifies a school notice.
type DocumentType string

const (
	DocumentTypeSchedule DocumentType = "SCHEDULE"
	DocumentTypePenalty  DocumentType = "PENALTY"
	DocumentTypeEvent    DocumentType = "EVENT"
	DocumentTypeNotice   DocumentType = "NOTICE"
)

// ParseDocumentType maps a raw model output to a known document type.
// Unknown values fall back to NOTICE.
func ParseDocumentType(s string) DocumentType {
	switch DocumentType(s) {
	case DocumentTypeSchedule, DocumentTypePenalty, DocumentTypeEvent, DocumentTypeNotice:
		return DocumentType(s)
	default:
		return DocumentTypeNotice
	}
}

// Text extraction provenance tags
const (
	OCRMethodNative = "native-reader"
	OCRMethodOCR    = "ocr"
	OCRMethodHybrid = "hybrid"
)

// File kinds accepted by the pipeline
const (
	FileKindImage = "IMAGE"
	FileKindPDF   = "PDF"
)

// ClassificationResult is the typed output of the classification stage.
type ClassificationResult struct {
	DocumentType DocumentType `json:"document_type"`
	Confidence   float64      `json:"confidence"`
	Keywords     []string     `json:"keywords"`
	Reasoning    string       `json:"reasoning"`
}

// ScheduleItem is a single calendar event extracted from the notice.
// Dates are local date-times in RFC 3339 layout without zone offset,
// e.g. "2025-07-23T00:00:00".
type ScheduleItem struct {
	Title     string `json:"title"`
	Memo      string `json:"memo,omitempty"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	IsAllDay  bool   `json:"is_all_day"`
}

// ExtractionResult holds schedules plus whatever structured extras the
// model found (fees, deadlines, contacts and so on).
type ExtractionResult struct {
	Schedules      []ScheduleItem `json:"schedules"`
	AdditionalInfo map[string]any `json:"additional_info,omitempty"`
}

// DifficultExpression pairs a hard expression from the notice with a plain
// explanation in the user's target language.
type DifficultExpression struct {
	Original    string `json:"original"`
	Explanation string `json:"explanation"`
}

// MaxDifficultExpressions caps the expression list regardless of how many
// pairs the model emits.
const MaxDifficultExpressions = 10

// SourceFile holds the uploaded bytes until text extraction succeeds, so
// a retry after an extraction failure can re-run it without a re-upload.
type SourceFile struct {
	Data     []byte
	MimeType string
	Kind     string
}

// PipelineContext accumulates all intermediate and final artifacts of one
// analysis attempt. It is the unit of caching and the unit of retry: the
// orchestrator persists it after every attempted stage and a retry resumes
// from CompletedStage.
type PipelineContext struct {
	AnalysisID           string                `json:"analysis_id"`
	Source               *SourceFile           `json:"-"`
	OriginalText         string                `json:"original_text,omitempty"`
	SimplifiedKorean     string                `json:"simplified_korean,omitempty"`
	TranslatedText       string                `json:"translated_text,omitempty"`
	Summary              string                `json:"summary,omitempty"`
	DifficultExpressions []DifficultExpression `json:"difficult_expressions"`
	Classification       *ClassificationResult `json:"classification,omitempty"`
	Extraction           *ExtractionResult     `json:"extraction,omitempty"`
	DocumentType         DocumentType          `json:"document_type,omitempty"`
	TargetLanguage       TargetLanguage        `json:"target_language"`
	OCRMethod            string                `json:"ocr_method,omitempty"`
	PageCount            int                   `json:"page_count,omitempty"`
	CompletedStage       Stage                 `json:"completed_stage"`
	Metadata             map[string]any        `json:"metadata,omitempty"`
	ProcessingLogs       []string              `json:"processing_logs,omitempty"`
	CreatedAt            time.Time             `json:"created_at"`
}

// NewPipelineContext builds a fresh context at stage NONE.
func NewPipelineContext(analysisID string, lang TargetLanguage, metadata map[string]any) *PipelineContext {
	if metadata == nil {
		metadata = make(map[string]any)
	}
	return &PipelineContext{
		AnalysisID:     analysisID,
		TargetLanguage: lang,
		CompletedStage: StageNone,
		Metadata:       metadata,
		CreatedAt:      time.Now(),
	}
}

// AppendLog appends a timestamped entry to the processing log.
func (c *PipelineContext) AppendLog(format string, args ...any) {
	entry := fmt.Sprintf("[%s] %s", time.Now().Format(time.RFC3339), fmt.Sprintf(format, args...))
	c.ProcessingLogs = append(c.ProcessingLogs, entry)
}

// Advance moves the completed-stage marker forward. It never regresses.
func (c *PipelineContext) Advance(s Stage) {
	if s > c.CompletedStage {
		c.CompletedStage = s
	}
}

// Result wraps a stage output so the fallback path is visible in the type:
// a degraded value carries the reason the primary path was abandoned.
type Result[T any] struct {
	Value    T
	Degraded bool
	Reason   string
}

// Ok wraps a value produced by the primary path.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Fallback wraps a default value adopted after the primary path failed.
func Fallback[T any](v T, reason string) Result[T] {
	return Result[T]{Value: v, Degraded: true, Reason: reason}
}

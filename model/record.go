package model

import "time"

// Analysis response statuses
const (
	StatusCompleted = "COMPLETED"
	StatusPartial   = "PARTIAL"
)

// Stage log statuses
const (
	StageStatusSuccess  = "success"
	StageStatusFailure  = "failure"
	StageStatusSkip     = "skip"
	StageStatusFallback = "fallback"
)

// TokenUsage accumulates generation-API token counts over one pipeline run.
type TokenUsage struct {
	Input  int64 `json:"input"`
	Output int64 `json:"output"`
	Total  int64 `json:"total"`
}

// StageLog is the per-stage audit row handed to the persistence
// collaborator: one entry per attempted (or skipped) stage.
type StageLog struct {
	Stage        string  `json:"stage"`
	Order        int     `json:"order"`
	Input        string  `json:"input,omitempty"` // truncated
	PromptID     string  `json:"prompt_id,omitempty"`
	Model        string  `json:"model,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
	RawResponse  string  `json:"raw_response,omitempty"` // truncated
	ParsedResult string  `json:"parsed_result,omitempty"`
	Summary      string  `json:"summary,omitempty"`
	DurationMS   int64   `json:"duration_ms"`
	Status       string  `json:"status"`
	Error        string  `json:"error,omitempty"`
}

// AnalysisResponse is the payload returned for a pipeline run: COMPLETED
// with all artifacts, or PARTIAL with whatever exists plus the failed stage
// so the client can retry with the same analysis id.
type AnalysisResponse struct {
	AnalysisID           string                `json:"analysis_id"`
	Status               string                `json:"status"`
	DocumentType         DocumentType          `json:"document_type,omitempty"`
	OriginalText         string                `json:"original_text,omitempty"`
	SimplifiedKorean     string                `json:"simplified_korean,omitempty"`
	TranslatedText       string                `json:"translated_text,omitempty"`
	Summary              string                `json:"summary,omitempty"`
	DifficultExpressions []DifficultExpression `json:"difficult_expressions,omitempty"`
	Classification       *ClassificationResult `json:"classification,omitempty"`
	Extraction           *ExtractionResult     `json:"extraction,omitempty"`
	TargetLanguage       TargetLanguage        `json:"target_language"`
	OCRMethod            string                `json:"ocr_method,omitempty"`
	PageCount            int                   `json:"page_count,omitempty"`
	FailedStage          string                `json:"failed_stage,omitempty"`
	Error                string                `json:"error,omitempty"`
	ElapsedMS            int64                 `json:"elapsed_ms"`
	TokenUsage           TokenUsage            `json:"token_usage"`
}

// AnalysisRecord is what the in-memory record store keeps per analysis:
// the latest response plus the audit trail.
type AnalysisRecord struct {
	ID        string            `json:"id"`
	Filename  string            `json:"filename"`
	FileURL   string            `json:"file_url,omitempty"`
	Status    string            `json:"status"`
	Result    *AnalysisResponse `json:"result,omitempty"`
	StageLogs []StageLog        `json:"stage_logs,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

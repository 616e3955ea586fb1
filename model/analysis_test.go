package model

import (
	"testing"
)

func TestStageOrdering(t *testing.T) {
	stages := []Stage{
		StageNone,
		StageTextExtracted,
		StageClassified,
		StageExtracted,
		StageDifficultExpressionsExtracted,
		StageSimplified,
		StageTranslated,
		StageSummarized,
		StageCompleted,
	}
	for i := 1; i < len(stages); i++ {
		if stages[i] <= stages[i-1] {
			t.Errorf("Stage %s should order after %s", stages[i], stages[i-1])
		}
	}
}

func TestStageString(t *testing.T) {
	if got := StageDifficultExpressionsExtracted.String(); got != "DIFFICULT_EXPRESSIONS_EXTRACTED" {
		t.Errorf("String() = %q", got)
	}
	if got := Stage(99).String(); got != "UNKNOWN" {
		t.Errorf("String() for invalid stage = %q, want UNKNOWN", got)
	}
}

func TestAdvanceNeverRegresses(t *testing.T) {
	pctx := NewPipelineContext("id-1", ResolveLanguage("en"), nil)

	if pctx.CompletedStage != StageNone {
		t.Fatalf("Fresh context stage = %s, want NONE", pctx.CompletedStage)
	}

	pctx.Advance(StageSimplified)
	if pctx.CompletedStage != StageSimplified {
		t.Fatalf("Stage = %s, want SIMPLIFIED", pctx.CompletedStage)
	}

	// Advancing to an earlier stage is a no-op.
	pctx.Advance(StageClassified)
	if pctx.CompletedStage != StageSimplified {
		t.Errorf("Stage regressed to %s", pctx.CompletedStage)
	}
}

func TestNewPipelineContextDefaults(t *testing.T) {
	pctx := NewPipelineContext("id-1", ResolveLanguage("vi"), nil)

	if pctx.Metadata == nil {
		t.Error("Metadata should be initialized")
	}
	if pctx.TargetLanguage.Name != "Vietnamese" {
		t.Errorf("TargetLanguage = %+v", pctx.TargetLanguage)
	}
	if pctx.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestAppendLog(t *testing.T) {
	pctx := NewPipelineContext("id-1", ResolveLanguage("en"), nil)

	pctx.AppendLog("extracted %d pages", 3)
	pctx.AppendLog("classified as %s", DocumentTypeNotice)

	if len(pctx.ProcessingLogs) != 2 {
		t.Fatalf("ProcessingLogs = %d entries, want 2", len(pctx.ProcessingLogs))
	}
}

func TestParseDocumentType(t *testing.T) {
	tests := []struct {
		input string
		want  DocumentType
	}{
		{"SCHEDULE", DocumentTypeSchedule},
		{"PENALTY", DocumentTypePenalty},
		{"EVENT", DocumentTypeEvent},
		{"NOTICE", DocumentTypeNotice},
		{"HOMEWORK", DocumentTypeNotice},
		{"", DocumentTypeNotice},
	}
	for _, tt := range tests {
		if got := ParseDocumentType(tt.input); got != tt.want {
			t.Errorf("ParseDocumentType(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestResolveLanguage(t *testing.T) {
	tests := []struct {
		code     string
		wantCode string
		wantName string
	}{
		{"en", "en", "English"},
		{"VI", "vi", "Vietnamese"},
		{" ja ", "ja", "Japanese"},
		{"xx", "en", "English"},
		{"", "en", "English"},
	}
	for _, tt := range tests {
		got := ResolveLanguage(tt.code)
		if got.Code != tt.wantCode || got.Name != tt.wantName {
			t.Errorf("ResolveLanguage(%q) = %+v, want %s/%s", tt.code, got, tt.wantCode, tt.wantName)
		}
	}
}

func TestResultConstructors(t *testing.T) {
	ok := Ok("value")
	if ok.Degraded || ok.Value != "value" {
		t.Errorf("Ok() = %+v", ok)
	}

	fb := Fallback(42, "quota exhausted")
	if !fb.Degraded || fb.Value != 42 || fb.Reason != "quota exhausted" {
		t.Errorf("Fallback() = %+v", fb)
	}
}

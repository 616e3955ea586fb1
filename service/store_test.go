package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/kokonnect/konnect-back-sub000/model"
)

func newTestStore(maxRecords int) *AnalysisStore {
	return &AnalysisStore{
		records:    make(map[string]*model.AnalysisRecord),
		maxRecords: maxRecords,
	}
}

func newTestRecord(id string, createdAt time.Time) *model.AnalysisRecord {
	return &model.AnalysisRecord{
		ID:        id,
		Filename:  id + ".pdf",
		Status:    "processing",
		CreatedAt: createdAt,
	}
}

func TestAnalysisStoreSaveAndGet(t *testing.T) {
	store := newTestStore(0)

	record := newTestRecord("a-1", time.Now())
	store.Save(record)

	got := store.Get("a-1")
	if got == nil {
		t.Fatal("Get returned nil for saved record")
	}
	if got.Filename != "a-1.pdf" {
		t.Errorf("Filename = %q, want %q", got.Filename, "a-1.pdf")
	}
	if got.UpdatedAt.IsZero() {
		t.Error("Save should set UpdatedAt")
	}
}

func TestAnalysisStoreGetMissing(t *testing.T) {
	store := newTestStore(0)
	if got := store.Get("missing"); got != nil {
		t.Errorf("Get for missing id = %+v, want nil", got)
	}
}

func TestAnalysisStoreListOrder(t *testing.T) {
	store := newTestStore(0)

	base := time.Now()
	store.Save(newTestRecord("old", base.Add(-2*time.Hour)))
	store.Save(newTestRecord("mid", base.Add(-time.Hour)))
	store.Save(newTestRecord("new", base))

	list := store.List()
	if len(list) != 3 {
		t.Fatalf("List returned %d records, want 3", len(list))
	}
	if list[0].ID != "new" || list[1].ID != "mid" || list[2].ID != "old" {
		t.Errorf("List order = [%s %s %s], want newest first", list[0].ID, list[1].ID, list[2].ID)
	}
}

func TestAnalysisStoreSetResult(t *testing.T) {
	store := newTestStore(0)
	store.Save(newTestRecord("a-1", time.Now()))

	store.SetResult("a-1", &model.AnalysisResponse{Status: model.StatusPartial})

	got := store.Get("a-1")
	if got.Status != model.StatusPartial {
		t.Errorf("Status = %q, want %q", got.Status, model.StatusPartial)
	}
	if got.Result == nil {
		t.Fatal("Result should be set")
	}

	// SetResult on an unknown id must not panic.
	store.SetResult("missing", &model.AnalysisResponse{Status: model.StatusCompleted})
}

func TestAnalysisStoreAppendStageLog(t *testing.T) {
	store := newTestStore(0)
	store.Save(newTestRecord("a-1", time.Now()))

	store.AppendStageLog("a-1", model.StageLog{Stage: model.StageNameClassification, Order: 2})
	store.AppendStageLog("a-1", model.StageLog{Stage: model.StageNameTranslation, Order: 6})

	got := store.Get("a-1")
	if len(got.StageLogs) != 2 {
		t.Fatalf("StageLogs length = %d, want 2", len(got.StageLogs))
	}
	if got.StageLogs[1].Stage != model.StageNameTranslation {
		t.Errorf("second log stage = %q, want %q", got.StageLogs[1].Stage, model.StageNameTranslation)
	}
}

func TestAnalysisStoreCleanup(t *testing.T) {
	store := newTestStore(3)

	base := time.Now()
	for i := 0; i < 5; i++ {
		store.Save(newTestRecord(fmt.Sprintf("a-%d", i), base.Add(time.Duration(i)*time.Minute)))
	}

	if store.Count() != 3 {
		t.Fatalf("Count = %d, want 3 after cleanup", store.Count())
	}
	// Oldest two should be evicted.
	if store.Get("a-0") != nil || store.Get("a-1") != nil {
		t.Error("oldest records should be removed by cleanup")
	}
	if store.Get("a-4") == nil {
		t.Error("newest record should survive cleanup")
	}
}

func TestAnalysisStoreUnlimited(t *testing.T) {
	store := newTestStore(0)

	for i := 0; i < 50; i++ {
		store.Save(newTestRecord(fmt.Sprintf("a-%d", i), time.Now()))
	}
	if store.Count() != 50 {
		t.Errorf("Count = %d, want 50 with unlimited store", store.Count())
	}
}

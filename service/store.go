package service

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/kokonnect/konnect-back-sub000/config"
	"github.com/kokonnect/konnect-back-sub000/model"
)

// AnalysisStore is an in-memory store of analysis records and their
// per-stage audit logs. It stands in for the persistence collaborator
// (document/file/translation records live in a database in production)
// while exposing the exact per-stage fields that collaborator consumes.
type AnalysisStore struct {
	mu         sync.RWMutex
	records    map[string]*model.AnalysisRecord
	maxRecords int // maximum records to keep, 0 = unlimited
}

func NewAnalysisStore(cfg *config.StoreConfig) *AnalysisStore {
	maxRecords := cfg.MaxRecords
	if maxRecords < 0 {
		maxRecords = 0
	}
	return &AnalysisStore{
		records:    make(map[string]*model.AnalysisRecord),
		maxRecords: maxRecords,
	}
}

func (s *AnalysisStore) Save(record *model.AnalysisRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record.UpdatedAt = time.Now()
	s.records[record.ID] = record

	s.cleanupIfNeeded()
}

func (s *AnalysisStore) Get(id string) *model.AnalysisRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[id]
}

func (s *AnalysisStore) List() []*model.AnalysisRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.AnalysisRecord, 0, len(s.records))
	for _, r := range s.records {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func (s *AnalysisStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
}

// SetResult stores the run outcome on the record and syncs the status.
func (s *AnalysisStore) SetResult(id string, result *model.AnalysisResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.records[id]; ok {
		r.Result = result
		r.Status = result.Status
		r.UpdatedAt = time.Now()
	}
}

// AppendStageLog adds one audit row for an attempted or skipped stage.
func (s *AnalysisStore) AppendStageLog(id string, log model.StageLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.records[id]; ok {
		r.StageLogs = append(r.StageLogs, log)
		r.UpdatedAt = time.Now()
	}
}

// Count returns the number of records in the store.
func (s *AnalysisStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// cleanupIfNeeded removes oldest records if the store exceeds maxRecords.
// Must be called with lock held.
func (s *AnalysisStore) cleanupIfNeeded() {
	if s.maxRecords <= 0 {
		return // unlimited
	}
	if len(s.records) <= s.maxRecords {
		return
	}

	// Sort records by creation time
	all := make([]*model.AnalysisRecord, 0, len(s.records))
	for _, r := range s.records {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	// Remove oldest records
	removeCount := len(s.records) - s.maxRecords
	for i := 0; i < removeCount; i++ {
		slog.Info("auto-cleaning old analysis record",
			"analysis_id", all[i].ID,
			"created_at", all[i].CreatedAt,
		)
		delete(s.records, all[i].ID)
	}
}

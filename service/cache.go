package service

import (
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/kokonnect/konnect-back-sub000/model"
)

// AnalysisCache holds in-flight pipeline contexts so a failed run can be
// retried from where it stopped. Entries expire after the TTL (measured
// from the last persist), after which the analysis id is simply not found
// and a retry must start over. The LRU bound caps memory under load.
type AnalysisCache struct {
	lru *expirable.LRU[string, *model.PipelineContext]
}

func NewAnalysisCache(maxEntries int, ttl time.Duration) *AnalysisCache {
	return &AnalysisCache{
		lru: expirable.NewLRU[string, *model.PipelineContext](maxEntries, nil, ttl),
	}
}

// Put persists the context under its analysis id.
func (c *AnalysisCache) Put(pctx *model.PipelineContext) {
	c.lru.Add(pctx.AnalysisID, pctx)
}

// Get returns the context for the id, or false when absent or expired.
func (c *AnalysisCache) Get(analysisID string) (*model.PipelineContext, bool) {
	return c.lru.Get(analysisID)
}

// Invalidate drops the context. Called when an analysis completes.
func (c *AnalysisCache) Invalidate(analysisID string) {
	if c.lru.Remove(analysisID) {
		slog.Debug("analysis context evicted", "analysis_id", analysisID)
	}
}

// Len returns the number of live contexts, for the health endpoint.
func (c *AnalysisCache) Len() int {
	return c.lru.Len()
}

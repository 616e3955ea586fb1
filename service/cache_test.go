package service

import (
	"testing"
	"time"

	"github.com/kokonnect/konnect-back-sub000/model"
)

func TestCachePutGet(t *testing.T) {
	cache := NewAnalysisCache(10, time.Minute)

	pctx := model.NewPipelineContext("id-1", model.ResolveLanguage("en"), nil)
	cache.Put(pctx)

	got, ok := cache.Get("id-1")
	if !ok {
		t.Fatal("Expected context in cache")
	}
	if got.AnalysisID != "id-1" {
		t.Errorf("Unexpected context: %+v", got)
	}
}

func TestCacheMissingID(t *testing.T) {
	cache := NewAnalysisCache(10, time.Minute)
	if _, ok := cache.Get("unknown"); ok {
		t.Error("Expected miss for unknown id")
	}
}

func TestCacheInvalidate(t *testing.T) {
	cache := NewAnalysisCache(10, time.Minute)
	cache.Put(model.NewPipelineContext("id-1", model.ResolveLanguage("en"), nil))

	cache.Invalidate("id-1")
	if _, ok := cache.Get("id-1"); ok {
		t.Error("Expected context gone after invalidate")
	}
}

func TestCacheExpiry(t *testing.T) {
	cache := NewAnalysisCache(10, 20*time.Millisecond)
	cache.Put(model.NewPipelineContext("id-1", model.ResolveLanguage("en"), nil))

	time.Sleep(60 * time.Millisecond)
	if _, ok := cache.Get("id-1"); ok {
		t.Error("Expected context expired")
	}
}

func TestCacheBound(t *testing.T) {
	cache := NewAnalysisCache(2, time.Minute)
	cache.Put(model.NewPipelineContext("id-1", model.ResolveLanguage("en"), nil))
	cache.Put(model.NewPipelineContext("id-2", model.ResolveLanguage("en"), nil))
	cache.Put(model.NewPipelineContext("id-3", model.ResolveLanguage("en"), nil))

	if cache.Len() != 2 {
		t.Errorf("Expected LRU bound of 2, got %d", cache.Len())
	}
	if _, ok := cache.Get("id-1"); ok {
		t.Error("Expected oldest entry evicted")
	}
}

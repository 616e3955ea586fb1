package service

import (
	"sync"
	"time"
)

// stageAudit keeps the last raw model response, the model that produced
// it, and the processing duration of a stage module so the orchestrator
// can hand them to the audit log. The mutex covers concurrent pipeline
// runs sharing one module instance; the values are per-module, not
// per-run, which is all the audit contract asks.
type stageAudit struct {
	mu       sync.Mutex
	raw      string
	model    string
	duration time.Duration
}

func (a *stageAudit) record(raw, model string, d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.raw = raw
	a.model = model
	a.duration = d
}

// LastRawResponse returns the raw model output of the most recent call.
func (a *stageAudit) LastRawResponse() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.raw
}

// LastModel returns the model name the most recent call resolved to.
func (a *stageAudit) LastModel() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.model
}

// LastDuration returns how long the most recent call took.
func (a *stageAudit) LastDuration() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.duration
}

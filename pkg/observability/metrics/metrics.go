package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
)

type modelCounters struct {
	served         atomic.Int64
	failed         atomic.Int64
	cacheHits      atomic.Int64
	missingUploads atomic.Int64
}

var (
	mu     sync.RWMutex
	byName = map[string]*modelCounters{}
)

func counters(model string) *modelCounters {
	mu.RLock()
	c, ok := byName[model]
	mu.RUnlock()
	if ok {
		return c
	}
	mu.Lock()
	defer mu.Unlock()
	if c, ok = byName[model]; !ok {
		c = &modelCounters{}
		byName[model] = c
	}
	return c
}

func ObservePrediction(model string) { counters(model).served.Add(1) }

func ObserveFailure(model string) { counters(model).failed.Add(1) }

func ObserveCacheHit(model string) { counters(model).cacheHits.Add(1) }

func ObserveMissingUpload(model string) { counters(model).missingUploads.Add(1) }

// Snapshot is a point-in-time copy of one model's counters.
type Snapshot struct {
	Served         int64
	Failed         int64
	CacheHits      int64
	MissingUploads int64
}

func Get(model string) Snapshot {
	c := counters(model)
	return Snapshot{
		Served:         c.served.Load(),
		Failed:         c.failed.Load(),
		CacheHits:      c.cacheHits.Load(),
		MissingUploads: c.missingUploads.Load(),
	}
}

// Reset clears every counter; used by tests.
func Reset() {
	mu.Lock()
	byName = map[string]*modelCounters{}
	mu.Unlock()
}

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	Write(w)
}

func Write(w io.Writer) {
	mu.RLock()
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	mu.RUnlock()
	sort.Strings(names)

	series := []struct {
		name string
		help string
		get  func(Snapshot) int64
	}{
		{"aarogya_predictions_total", "Number of predictions served.", func(s Snapshot) int64 { return s.Served }},
		{"aarogya_prediction_failures_total", "Number of predictions that failed during inference.", func(s Snapshot) int64 { return s.Failed }},
		{"aarogya_prediction_cache_hits_total", "Number of predictions answered from the result cache.", func(s Snapshot) int64 { return s.CacheHits }},
		{"aarogya_missing_uploads_total", "Number of image requests rejected without a file.", func(s Snapshot) int64 { return s.MissingUploads }},
	}
	for _, s := range series {
		fmt.Fprintf(w, "# HELP %s %s\n", s.name, s.help)
		fmt.Fprintf(w, "# TYPE %s counter\n", s.name)
		for _, model := range names {
			fmt.Fprintf(w, "%s{model=%q} %d\n", s.name, model, s.get(Get(model)))
		}
	}
}

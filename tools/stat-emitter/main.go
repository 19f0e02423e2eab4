// stat-emitter serves a synthetic rspamd-style /stat endpoint whose
// counters advance over time, for exercising the monitor without a
// running rspamd.
package main

import (
	"encoding/json"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"
)

// Action mix of a roughly healthy filter: mostly clean mail, some
// rejects, a few milder actions.
var actionWeights = map[string]float64{
	"no action":       0.78,
	"reject":          0.12,
	"add header":      0.06,
	"greylist":        0.03,
	"rewrite subject": 0.01,
}

type statResponse struct {
	Version   string            `json:"version"`
	Scanned   uint64            `json:"scanned"`
	Actions   map[string]uint64 `json:"actions"`
	ScanTimes []float64         `json:"scan_times"`
}

var (
	mu       sync.Mutex
	counts   = make(map[string]uint64)
	scanned  uint64
	lastTick time.Time
	rate     float64
)

func main() {
	addr := ":11334"
	if v := os.Getenv("ADDR"); v != "" {
		addr = v
	}

	rate = 25
	if v := os.Getenv("RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			rate = f
		}
	}

	lastTick = time.Now()

	http.HandleFunc("/stat", statHandler)
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	log.Printf("stat-emitter listening on %s (rate=%.0f msg/sec)", addr, rate)
	log.Fatal(http.ListenAndServe(addr, nil))
}

// statHandler advances the counters by the wall-clock time since the
// previous request, then reports them rspamd-style.
func statHandler(w http.ResponseWriter, _ *http.Request) {
	mu.Lock()

	now := time.Now()
	elapsed := now.Sub(lastTick).Seconds()
	lastTick = now

	// Fresh messages for this window, jittered so charts move.
	messages := rate * elapsed * (0.7 + 0.6*rand.Float64())
	for action, weight := range actionWeights {
		counts[action] += uint64(messages * weight)
	}
	scanned += uint64(messages)

	actions := make(map[string]uint64, len(counts))
	for k, v := range counts {
		actions[k] = v
	}
	total := scanned

	mu.Unlock()

	scanTimes := make([]float64, 8)
	for i := range scanTimes {
		scanTimes[i] = 0.05 + 0.2*rand.Float64()
	}

	resp := statResponse{
		Version:   "3.8.4",
		Scanned:   total,
		Actions:   actions,
		ScanTimes: scanTimes,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

package metrics

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

var enabled bool

// Init switches metric collection on or off. Recording calls are no-ops while disabled.
func Init(on bool) {
	enabled = on
	if !on {
		log.Printf("[METRICS] Metrics collection is disabled")
		return
	}
	log.Printf("[METRICS] Metrics collection enabled")
}

func IsEnabled() bool {
	return enabled
}

// WritePrometheus writes all collected metrics in Prometheus text format.
func WritePrometheus(w io.Writer) {
	metrics.WritePrometheus(w, true)
}

// RecordMutation counts a timeline mutation by op and outcome ("ok", "overlap", ...).
func RecordMutation(op, result string) {
	if !enabled {
		return
	}
	name := fmt.Sprintf(`gamefilm_timeline_mutations_total{op=%q,result=%q}`, op, result)
	metrics.GetOrCreateCounter(name).Inc()
}

func RecordSave(d time.Duration, err error) {
	if !enabled {
		return
	}
	metrics.GetOrCreateHistogram(`gamefilm_timeline_save_duration_seconds`).Update(d.Seconds())
	if err != nil {
		metrics.GetOrCreateCounter(`gamefilm_timeline_save_failures_total`).Inc()
	}
}

// RecordStaleWrite counts persistence writes skipped because a newer mutation was already saved.
func RecordStaleWrite() {
	if !enabled {
		return
	}
	metrics.GetOrCreateCounter(`gamefilm_timeline_stale_writes_total`).Inc()
}

func RecordResolve(lanes int) {
	if !enabled {
		return
	}
	metrics.GetOrCreateCounter(`gamefilm_resolve_requests_total`).Inc()
	metrics.GetOrCreateCounter(`gamefilm_resolve_lanes_total`).Add(lanes)
}

func RecordVideoRegistered(camera string) {
	if !enabled {
		return
	}
	name := fmt.Sprintf(`gamefilm_library_videos_registered_total{camera=%q}`, camera)
	metrics.GetOrCreateCounter(name).Inc()
}

func RecordRequest(method, route string, status int) {
	if !enabled {
		return
	}
	name := fmt.Sprintf(`gamefilm_http_requests_total{method=%q,route=%q,status="%d"}`, method, route, status)
	metrics.GetOrCreateCounter(name).Inc()
}

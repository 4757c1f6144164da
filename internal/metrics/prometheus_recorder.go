package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "backupstate"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	verifyRuns       *prom.CounterVec
	verifyDuration   prom.Histogram
	driftTables      *prom.GaugeVec
	missingArtifacts prom.Gauge
	snapshotSaves    *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a fresh private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		verifyRuns: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "verify_runs_total",
			Help:      "Verification runs by outcome",
		}, []string{"outcome"}),
		verifyDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "verify_duration_seconds",
			Help:      "Duration of verification runs",
			Buckets:   prom.DefBuckets,
		}),
		driftTables: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "drift_tables",
			Help:      "Tables that differ from the stored snapshot in the last verification",
		}, []string{"kind"}),
		missingArtifacts: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "missing_artifacts",
			Help:      "Recorded configuration artifacts missing in the last verification",
		}),
		snapshotSaves: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_saves_total",
			Help:      "Snapshot saves by result",
		}, []string{"result"}),
	}
	reg.MustRegister(pr.verifyRuns, pr.verifyDuration, pr.driftTables, pr.missingArtifacts, pr.snapshotSaves)
	return pr
}

func (p *PrometheusRecorder) IncVerifyRun(outcome Outcome) {
	if p == nil {
		return
	}
	p.verifyRuns.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveVerifyDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.verifyDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetDriftTables(added, missing int) {
	if p == nil {
		return
	}
	p.driftTables.WithLabelValues("added").Set(float64(added))
	p.driftTables.WithLabelValues("missing").Set(float64(missing))
}

func (p *PrometheusRecorder) SetMissingArtifacts(n int) {
	if p == nil {
		return
	}
	p.missingArtifacts.Set(float64(n))
}

func (p *PrometheusRecorder) IncSnapshotSave(result SaveResult) {
	if p == nil {
		return
	}
	p.snapshotSaves.WithLabelValues(string(result)).Inc()
}

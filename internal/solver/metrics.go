package solver

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/abhisek/mathstep/internal/problem"
)

const tracerName = "mathstep.solver"

// Registered on the default registry; the server exposes them at /metrics.
var (
	// solvesTotal counts solved and unsolved problems per type.
	//
	// Labels:
	//   - type: problem type
	//   - outcome: "solved" or "unsolved"
	solvesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mathstep",
			Subsystem: "solver",
			Name:      "solves_total",
			Help:      "Total problems solved, by type and outcome.",
		},
		[]string{"type", "outcome"},
	)

	solveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mathstep",
			Subsystem: "solver",
			Name:      "solve_duration_seconds",
			Help:      "Time spent classifying, normalizing and solving one problem.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"type"},
	)

	solveSteps = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mathstep",
			Subsystem: "solver",
			Name:      "steps",
			Help:      "Number of narrated steps per solution.",
			Buckets:   prometheus.LinearBuckets(1, 2, 10),
		},
	)

	// textDetections counts image text detections.
	//
	// Labels:
	//   - outcome: "text", "empty" or "error"
	textDetections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mathstep",
			Subsystem: "solver",
			Name:      "text_detections_total",
			Help:      "Image text detections by outcome.",
		},
		[]string{"outcome"},
	)
)

func outcome(res problem.Result) string {
	if res.Solved() {
		return "solved"
	}
	return "unsolved"
}

func recordSolveMetrics(res problem.Result, elapsed time.Duration) {
	solvesTotal.WithLabelValues(string(res.Type), outcome(res)).Inc()
	solveDuration.WithLabelValues(string(res.Type)).Observe(elapsed.Seconds())
	solveSteps.Observe(float64(len(res.Steps)))
}

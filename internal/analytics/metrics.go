package analytics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// trainingRuns counts training runs by trigger (cold_start, retrain) and status.
	trainingRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gradecast",
		Subsystem: "model",
		Name:      "training_runs_total",
		Help:      "Total model training runs",
	}, []string{"trigger", "status"})

	// trainingDuration measures fit-and-persist time.
	trainingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gradecast",
		Subsystem: "model",
		Name:      "training_duration_seconds",
		Help:      "Model training duration in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	// trainingMSE is the held-out MSE of the last successful run.
	trainingMSE = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "gradecast",
		Subsystem: "model",
		Name:      "test_mse",
		Help:      "Held-out mean squared error of the last trained model",
	})

	// predictions counts predictions by risk level.
	predictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gradecast",
		Subsystem: "predictor",
		Name:      "predictions_total",
		Help:      "Total grade predictions by risk level",
	}, []string{"risk"})

	// predictionErrors counts failed predictions.
	predictionErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gradecast",
		Subsystem: "predictor",
		Name:      "errors_total",
		Help:      "Total failed grade predictions",
	})
)

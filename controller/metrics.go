package controller

import (
	"errors"
	"net/http"

	"github.com/calvinmclean/drv8825"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	errorKindInvalidArgument = "invalid_argument"
	errorKindDriver          = "driver"
)

var (
	movesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drv8825_stepper_moves_total",
			Help: "Total number of completed moves",
		},
		[]string{"direction"},
	)

	stepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drv8825_stepper_steps_total",
			Help: "Total number of step pulses sent",
		},
		[]string{"direction"},
	)

	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drv8825_stepper_errors_total",
			Help: "Total number of failed commands",
		},
		[]string{"kind"},
	)
)

// MetricsHandler serves the stepper metrics in the Prometheus text format
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

func recordMove(direction drv8825.Direction, steps int) {
	movesTotal.WithLabelValues(direction.String()).Inc()
	stepsTotal.WithLabelValues(direction.String()).Add(float64(steps))
}

func recordError(err error) {
	kind := errorKindDriver
	if errors.Is(err, drv8825.ErrInvalidArgument) {
		kind = errorKindInvalidArgument
	}
	errorsTotal.WithLabelValues(kind).Inc()
}

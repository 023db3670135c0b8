// Package metrics exports gateway request metrics to Prometheus.
package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace prefixes every metric name when none is given.
const DefaultNamespace = "docrepo"

// Observer implements gateway.Observer.
type Observer struct {
	requestDuration *prometheus.HistogramVec
	requestErrors   *prometheus.CounterVec
	uploadBytes     prometheus.Counter
}

// NewObserver registers the request metrics with reg. A nil reg selects
// prometheus.DefaultRegisterer. Registering twice reuses the collectors
// already present.
func NewObserver(namespace string, reg prometheus.Registerer) (*Observer, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	requestDuration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_duration_seconds",
		Help:      "Latency of gateway requests by action and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"action", "code"}))
	if err != nil {
		return nil, err
	}

	requestErrors, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "request_errors_total",
		Help:      "Count of gateway requests answered with a 5xx status.",
	}, []string{"action"}))
	if err != nil {
		return nil, err
	}

	uploadBytes, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploaded_bytes_total",
		Help:      "Cumulative size of documents stored.",
	}))
	if err != nil {
		return nil, err
	}

	return &Observer{
		requestDuration: requestDuration,
		requestErrors:   requestErrors,
		uploadBytes:     uploadBytes,
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register metric: %w", err)
	}
	return c, nil
}

func (o *Observer) ObserveRequest(action string, status int, duration time.Duration) {
	if o == nil {
		return
	}
	o.requestDuration.WithLabelValues(action, strconv.Itoa(status)).Observe(duration.Seconds())
	if status >= http.StatusInternalServerError {
		o.requestErrors.WithLabelValues(action).Inc()
	}
}

func (o *Observer) ObserveUpload(size int64) {
	if o == nil || size <= 0 {
		return
	}
	o.uploadBytes.Add(float64(size))
}

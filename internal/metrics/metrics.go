// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics exposes Prometheus collectors for content transitions
// and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "localgame",
			Name:      "content_transitions_total",
			Help:      "Draft/publish lifecycle transitions by content kind and action.",
		},
		[]string{"kind", "action"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "localgame",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		},
		[]string{"method", "code"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "localgame",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	emailsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "localgame",
			Name:      "emails_sent_total",
			Help:      "Verification emails by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(transitions, httpRequests, httpDuration, emailsSent)
}

// ObserveTransition counts one lifecycle transition.
func ObserveTransition(kind, action string) {
	transitions.WithLabelValues(kind, action).Inc()
}

// ObserveRequest records one served HTTP request.
func ObserveRequest(method string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveEmail counts a verification email send attempt.
func ObserveEmail(ok bool) {
	outcome := "sent"
	if !ok {
		outcome = "failed"
	}
	emailsSent.WithLabelValues(outcome).Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

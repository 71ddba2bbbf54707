// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and prysm contributors
//
// SPDX-License-Identifier: Apache-2.0

package watchdog

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rs/zerolog/log"
)

// Metrics holds the gauges describing the last cycle.
type Metrics struct {
	registry *prometheus.Registry

	usagePercent  prometheus.Gauge
	quota         prometheus.Gauge
	used          prometheus.Gauge
	inputsToggled prometheus.Gauge
	cycleSuccess  prometheus.Gauge
	lastRun       prometheus.Gauge
	decision      *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		usagePercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "license_watchdog_usage_percent",
			Help: "Percentage of today's license quota used",
		}),
		quota: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "license_watchdog_quota_gib",
			Help: "Daily license quota in GiB",
		}),
		used: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "license_watchdog_used_gib",
			Help: "License volume used today in GiB",
		}),
		inputsToggled: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "license_watchdog_inputs_toggled",
			Help: "Number of inputs changed by the last cycle",
		}),
		cycleSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "license_watchdog_cycle_success",
			Help: "1 if the last cycle completed, 0 if it aborted",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "license_watchdog_last_run_timestamp_seconds",
			Help: "Unix time the last cycle finished",
		}),
		decision: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "license_watchdog_decision",
				Help: "Decision taken by the last cycle",
			},
			[]string{"decision"},
		),
	}

	m.registry.MustRegister(m.usagePercent, m.quota, m.used, m.inputsToggled, m.cycleSuccess, m.lastRun, m.decision)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Observe records a cycle report.
func (m *Metrics) Observe(report Report) {
	if report.Usage != nil {
		m.usagePercent.Set(report.Usage.PercentUsed)
		m.quota.Set(report.Usage.Quota)
		m.used.Set(report.Usage.Used)
	}
	m.inputsToggled.Set(float64(report.Toggled))
	if report.Success {
		m.cycleSuccess.Set(1)
	} else {
		m.cycleSuccess.Set(0)
	}
	m.lastRun.Set(float64(report.FinishedAt.Unix()))

	for d := range decisionNames {
		value := 0.0
		if report.Reason != "" && d == report.Decision {
			value = 1
		}
		m.decision.With(prometheus.Labels{"decision": d.String()}).Set(value)
	}
}

const defaultPushTimeout = 10 * time.Second

// PushReporter pushes cycle metrics to a Prometheus Pushgateway.
type PushReporter struct {
	metrics *Metrics
	pusher  *push.Pusher
	timeout time.Duration
}

// NewPushReporter bounds every push by timeout; a non-positive timeout means
// defaultPushTimeout.
func NewPushReporter(gatewayURL, job, nodeName string, timeout time.Duration, metrics *Metrics) *PushReporter {
	if timeout <= 0 {
		timeout = defaultPushTimeout
	}
	pusher := push.New(gatewayURL, job).
		Gatherer(metrics.Registry()).
		Client(&http.Client{Timeout: timeout})
	if nodeName != "" {
		pusher = pusher.Grouping("node", nodeName)
	}
	return &PushReporter{metrics: metrics, pusher: pusher, timeout: timeout}
}

func (p *PushReporter) Report(ctx context.Context, report Report) {
	p.metrics.Observe(report)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.pusher.PushContext(ctx); err != nil {
		log.Error().Err(err).Msg("error pushing metrics to pushgateway")
		return
	}
	log.Debug().Str("cycle_id", report.CycleID).Msg("metrics pushed to pushgateway")
}

// Copyright 2025 The Link2Trust Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"net/http"

	"github.com/Link2Trust/crypscan/detector"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics tracks scan activity exposed on /metrics. Each server owns its own
// registry so tests and embedded instances never collide.
type metrics struct {
	registry       *prometheus.Registry
	scansStarted   prometheus.Counter
	scansCompleted *prometheus.CounterVec
	findings       *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		scansStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crypscan",
			Name:      "scans_started_total",
			Help:      "Number of scans initiated through the API.",
		}),
		scansCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crypscan",
			Name:      "scans_completed_total",
			Help:      "Number of finished scans by outcome.",
		}, []string{"status"}),
		findings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crypscan",
			Name:      "findings_total",
			Help:      "Number of findings reported by completed scans, by category.",
		}, []string{"category"}),
	}

	m.registry.MustRegister(m.scansStarted, m.scansCompleted, m.findings)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *metrics) scanStarted() {
	m.scansStarted.Inc()
}

func (m *metrics) scanFinished(status string) {
	m.scansCompleted.WithLabelValues(status).Inc()
}

func (m *metrics) recordFindings(findings []detector.Finding) {
	for _, f := range findings {
		m.findings.WithLabelValues(string(f.Category)).Inc()
	}
}

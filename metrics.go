// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package spafallback

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Resolution outcomes, as used for the "outcome" label of the resolves
// counter.
const (
	OutcomeServed    = "served"
	OutcomeNotFound  = "not_found"
	OutcomeForbidden = "forbidden"
	OutcomeError     = "error"
)

// Metrics instruments an FSServer.
type Metrics struct {
	// Resolves counts path resolutions by outcome.
	Resolves *prometheus.CounterVec
	// ServedBytes observes the sizes of the served static assets.
	ServedBytes prometheus.Histogram
}

// NewMetrics returns new FSServer metrics, registered with the specified
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Resolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spafallback_resolves_total",
			Help: "The total number of static asset path resolutions, by outcome",
		}, []string{"outcome"}),
		ServedBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "spafallback_served_bytes",
			Help:    "The sizes of the static assets served",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8),
		}),
	}
	reg.MustRegister(m.Resolves, m.ServedBytes)
	return m
}

func (m *Metrics) observe(outcome string, size int) {
	if m == nil {
		return
	}
	m.Resolves.WithLabelValues(outcome).Inc()
	if outcome == OutcomeServed {
		m.ServedBytes.Observe(float64(size))
	}
}

func outcomeOf(err error) string {
	switch KindOf(err) {
	case KindNotFound:
		return OutcomeNotFound
	case KindForbidden:
		return OutcomeForbidden
	}
	return OutcomeError
}

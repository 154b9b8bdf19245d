// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package metrics holds the Prometheus collectors for crawling, graph
// building and question generation. A nil *Metrics is valid and records
// nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sitegraph"

// Entity resolution outcomes
const (
	OutcomeExact   = "exact"
	OutcomeMerged  = "merged"
	OutcomeCreated = "created"
)

// Metrics manages Prometheus metrics for the pipeline
type Metrics struct {
	registry *prometheus.Registry

	pagesFetched       *prometheus.CounterVec
	fetchFailures      *prometheus.CounterVec
	fetchDuration      *prometheus.HistogramVec
	crawlJobs          *prometheus.CounterVec
	entitiesResolved   *prometheus.CounterVec
	relationsPersisted prometheus.Counter
	questionsGenerated *prometheus.CounterVec
}

// New creates the collectors and registers them on reg
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{registry: reg}

	m.pagesFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_fetched_total",
			Help:      "Pages fetched, by fetch method",
		},
		[]string{"method"},
	)

	m.fetchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Failed page fetches, by error kind",
		},
		[]string{"kind"},
	)

	m.fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Page fetch latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	m.crawlJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "crawl_jobs_total",
			Help:      "Finished crawl jobs, by terminal status",
		},
		[]string{"status"},
	)

	m.entitiesResolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_resolved_total",
			Help:      "Entity candidates resolved, by outcome",
		},
		[]string{"outcome"},
	)

	m.relationsPersisted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relations_persisted_total",
			Help:      "Entity relations written to storage",
		},
	)

	m.questionsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questions_generated_total",
			Help:      "Questions kept after filtering, by level",
		},
		[]string{"level"},
	)

	reg.MustRegister(
		m.pagesFetched,
		m.fetchFailures,
		m.fetchDuration,
		m.crawlJobs,
		m.entitiesResolved,
		m.relationsPersisted,
		m.questionsGenerated,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) PageFetched(method string, took time.Duration) {
	if m == nil {
		return
	}
	m.pagesFetched.WithLabelValues(method).Inc()
	m.fetchDuration.WithLabelValues(method).Observe(took.Seconds())
}

func (m *Metrics) FetchFailed(kind string) {
	if m == nil {
		return
	}
	m.fetchFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) CrawlJobFinished(status string) {
	if m == nil {
		return
	}
	m.crawlJobs.WithLabelValues(status).Inc()
}

func (m *Metrics) EntityResolved(outcome string) {
	if m == nil {
		return
	}
	m.entitiesResolved.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RelationPersisted() {
	if m == nil {
		return
	}
	m.relationsPersisted.Inc()
}

func (m *Metrics) QuestionsGenerated(level string, n int) {
	if m == nil {
		return
	}
	m.questionsGenerated.WithLabelValues(level).Add(float64(n))
}

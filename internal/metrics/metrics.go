package metrics

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	HTTPRequestsTotal          *prometheus.CounterVec
	HTTPRequestDurationSeconds *prometheus.HistogramVec

	RegistrationsTotal *prometheus.CounterVec
	LoginsTotal        *prometheus.CounterVec
	TokensIssuedTotal  *prometheus.CounterVec
	AuthCodesIssued    *prometheus.CounterVec
	AuthCodesSwept     prometheus.Counter

	PostsModeratedTotal *prometheus.CounterVec
}

// New builds the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		RegistrationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_registrations_total",
				Help: "Total number of registration attempts.",
			},
			[]string{"result"},
		),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_logins_total",
				Help: "Total number of login attempts.",
			},
			[]string{"result"},
		),
		TokensIssuedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_tokens_issued_total",
				Help: "Total number of token pairs issued.",
			},
			[]string{"flow"},
		),
		AuthCodesIssued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_codes_issued_total",
				Help: "Total number of verification codes issued.",
			},
			[]string{"type"},
		),
		AuthCodesSwept: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "auth_codes_swept_total",
				Help: "Total number of expired verification codes removed.",
			},
		),
		PostsModeratedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "posts_moderated_total",
				Help: "Total number of moderation decisions.",
			},
			[]string{"decision"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDurationSeconds,
		m.RegistrationsTotal,
		m.LoginsTotal,
		m.TokensIssuedTotal,
		m.AuthCodesIssued,
		m.AuthCodesSwept,
		m.PostsModeratedTotal,
	)
	return m
}

// Result is the label value used for attempt counters.
func Result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

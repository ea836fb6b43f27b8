package auth

import (
	"teklip/marketplace/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

func (s *Service) metricsRegistrations() *prometheus.CounterVec {
	if s.metrics == nil {
		return nil
	}
	return s.metrics.RegistrationsTotal
}

func (s *Service) metricsLogins() *prometheus.CounterVec {
	if s.metrics == nil {
		return nil
	}
	return s.metrics.LoginsTotal
}

func (s *Service) count(vec *prometheus.CounterVec, err error) {
	if vec == nil {
		return
	}
	vec.WithLabelValues(metrics.Result(err)).Inc()
}

func (s *Service) tokenIssued(flow string) {
	if s.metrics == nil {
		return
	}
	s.metrics.TokensIssuedTotal.WithLabelValues(flow).Inc()
}

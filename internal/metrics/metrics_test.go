package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.LoginsTotal.WithLabelValues(Result(nil)).Inc()
	m.LoginsTotal.WithLabelValues(Result(errors.New("boom"))).Inc()
	m.LoginsTotal.WithLabelValues(Result(nil)).Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LoginsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginsTotal.WithLabelValues("failure")))

	assert.Panics(t, func() { New(reg) }, "double registration must panic")
}

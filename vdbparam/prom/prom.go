// Package vdbprom exports vdbparam conversion metrics to Prometheus through a
// [vdbparam.ConvertHook].
package vdbprom

import (
	"context"
	"time"

	"github.com/Query-farm/vdbparam/vdbparam"
	"github.com/prometheus/client_golang/prometheus"
)

// Hook records conversion counts, durations and payload sizes.
type Hook struct {
	conversions  *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	payloadBytes *prometheus.HistogramVec
}

// NewHook creates the collectors and registers them with reg. A nil reg
// uses prometheus.DefaultRegisterer.
func NewHook(reg prometheus.Registerer) (*Hook, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	h := &Hook{
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vdbparam_conversions_total",
			Help: "Total request conversions",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vdbparam_conversion_duration_seconds",
			Help:    "Duration of request conversions",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
		}, []string{"operation"}),
		payloadBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vdbparam_conversion_payload_bytes",
			Help:    "Payload size of successful conversions",
			Buckets: prometheus.ExponentialBuckets(64, 4, 10),
		}, []string{"operation"}),
	}
	for _, c := range []prometheus.Collector{h.conversions, h.duration, h.payloadBytes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Hook) OnConvertStart(ctx context.Context, _ vdbparam.ConvertInfo) (context.Context, vdbparam.HookToken) {
	return ctx, time.Now()
}

func (h *Hook) OnConvertEnd(_ context.Context, token vdbparam.HookToken, info vdbparam.ConvertInfo, stats *vdbparam.ConvertStatistics, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	h.conversions.WithLabelValues(info.Operation, status).Inc()
	if start, ok := token.(time.Time); ok {
		h.duration.WithLabelValues(info.Operation).Observe(time.Since(start).Seconds())
	}
	if err == nil && stats != nil {
		h.payloadBytes.WithLabelValues(info.Operation).Observe(float64(stats.PayloadBytes))
	}
}

package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	registerOnce sync.Once

	encodeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sib1ctl",
			Subsystem: "uper",
			Name:      "encode_total",
			Help:      "UPER encode attempts by result.",
		},
		[]string{"result"},
	)
	encodeBits = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sib1ctl",
			Subsystem: "uper",
			Name:      "encoded_bits",
			Help:      "Encoded message size in bits before padding.",
			Buckets:   prometheus.ExponentialBuckets(8, 2, 12),
		},
	)
	framesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sib1ctl",
			Subsystem: "transport",
			Name:      "frames_sent_total",
			Help:      "Frames handed to the transport by result.",
		},
		[]string{"result"},
	)
	frameBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sib1ctl",
			Subsystem: "transport",
			Name:      "frame_bytes_total",
			Help:      "Bytes written on the wire including the length header.",
		},
	)
	sendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sib1ctl",
			Subsystem: "transport",
			Name:      "send_duration_seconds",
			Help:      "Dial, write and close duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"result"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(encodeTotal, encodeBits, framesSent, frameBytes, sendDuration)
	})
}

func RecordEncode(bits int, err error) {
	RegisterMetrics()
	if err != nil {
		encodeTotal.WithLabelValues(ResultError).Inc()
		return
	}
	encodeTotal.WithLabelValues(ResultOK).Inc()
	encodeBits.Observe(float64(bits))
}

func RecordSend(written int, duration time.Duration, err error) {
	RegisterMetrics()
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	framesSent.WithLabelValues(result).Inc()
	sendDuration.WithLabelValues(result).Observe(duration.Seconds())
	if written > 0 {
		frameBytes.Add(float64(written))
	}
}

// WriteTextfile dumps the default registry in text exposition format.
func WriteTextfile(path string) error {
	RegisterMetrics()
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

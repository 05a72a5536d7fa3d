package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains the Prometheus metrics of the voice chat client
type Metrics struct {
	// Transport metrics
	ConnectionAttempts prometheus.Counter
	Reconnects         prometheus.Counter
	FramesReceived     *prometheus.CounterVec
	MalformedFrames    prometheus.Counter
	RecordingsSent     prometheus.Counter
	BytesSent          prometheus.Counter
	SendFailures       prometheus.Counter

	// Playback metrics
	ClipsEnqueued   prometheus.Counter
	ClipsPlayed     prometheus.Counter
	DecodeFailures  prometheus.Counter
	QueueLength     prometheus.Gauge
	PlaybackSeconds prometheus.Histogram

	// Capture metrics
	RecordingSeconds prometheus.Histogram
	CaptureErrors    prometheus.Counter

	gatherer prometheus.Gatherer
}

// New creates the metrics and registers them with the given registry.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		ConnectionAttempts: f.NewCounter(prometheus.CounterOpts{
			Name: "voicechat_connection_attempts_total",
			Help: "Total number of websocket connection attempts",
		}),
		Reconnects: f.NewCounter(prometheus.CounterOpts{
			Name: "voicechat_reconnects_total",
			Help: "Total number of scheduled reconnects",
		}),
		FramesReceived: f.NewCounterVec(prometheus.CounterOpts{
			Name: "voicechat_frames_received_total",
			Help: "Total number of frames received by type",
		}, []string{"type"}),
		MalformedFrames: f.NewCounter(prometheus.CounterOpts{
			Name: "voicechat_malformed_frames_total",
			Help: "Total number of text frames that could not be parsed",
		}),
		RecordingsSent: f.NewCounter(prometheus.CounterOpts{
			Name: "voicechat_recordings_sent_total",
			Help: "Total number of recordings sent to the server",
		}),
		BytesSent: f.NewCounter(prometheus.CounterOpts{
			Name: "voicechat_sent_bytes_total",
			Help: "Total number of audio bytes sent to the server",
		}),
		SendFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "voicechat_send_failures_total",
			Help: "Total number of recordings that could not be sent",
		}),

		ClipsEnqueued: f.NewCounter(prometheus.CounterOpts{
			Name: "voicechat_clips_enqueued_total",
			Help: "Total number of audio clips enqueued for playback",
		}),
		ClipsPlayed: f.NewCounter(prometheus.CounterOpts{
			Name: "voicechat_clips_played_total",
			Help: "Total number of audio clips played to completion",
		}),
		DecodeFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "voicechat_decode_failures_total",
			Help: "Total number of audio clips skipped because they could not be decoded or played",
		}),
		QueueLength: f.NewGauge(prometheus.GaugeOpts{
			Name: "voicechat_playback_queue_length",
			Help: "Current number of clips waiting for playback",
		}),
		PlaybackSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "voicechat_playback_duration_seconds",
			Help:    "Time spent playing a single clip",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
		}),

		RecordingSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "voicechat_recording_duration_seconds",
			Help:    "Duration of finalized recording sessions",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}),
		CaptureErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "voicechat_capture_errors_total",
			Help: "Total number of recording sessions that failed to start",
		}),

		gatherer: reg,
	}
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	VoiceRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_webhook_requests_total",
		Help: "The total number of voice webhook requests processed",
	}, []string{"route", "status"})

	SignatureRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voice_signature_rejections_total",
		Help: "Total number of webhook requests rejected for a bad signature",
	})

	RecordingsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recordings_processed_total",
		Help: "Total number of recording-completed callbacks processed",
	})

	TranscriptsEmailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "transcripts_emailed_total",
		Help: "Total number of transcript emails delivered",
	})

	EmailFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "transcript_email_failures_total",
		Help: "Total number of failed transcript email deliveries",
	})
)

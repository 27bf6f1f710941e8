package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RegistrationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "hackhub_registrations_total", Help: "Total successful hackathon registrations"},
	)
	SubmissionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "hackhub_submissions_total", Help: "Total submissions created"},
	)
	HackathonsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "hackhub_hackathons_created_total", Help: "Total hackathons created"},
	)
	StatsFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "hackhub_stats_failures_total", Help: "Total platform stat computations that degraded to zeros"},
	)
)

func Register() {
	prometheus.MustRegister(RegistrationsTotal, SubmissionsTotal, HackathonsCreatedTotal, StatsFailuresTotal)
}

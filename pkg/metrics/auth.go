package metrics

import "github.com/prometheus/client_golang/prometheus"

// AuthMetrics counts security-relevant outcomes.
type AuthMetrics struct {
	rejections    *prometheus.CounterVec
	rateLimited   *prometheus.CounterVec
	auditFailures prometheus.Counter
}

// NewAuthMetrics registers the auth metrics on the provided registerer.
func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	if reg == nil {
		return &AuthMetrics{}
	}
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_rejections_total",
		Help:      "Requests rejected by the authorization gate.",
	}, []string{"reason"})
	rateLimited := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_rate_limited_total",
		Help:      "Auth requests refused by rate limiting.",
	}, []string{"scope"})
	auditFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_write_failures_total",
		Help:      "Audit events that could not be persisted.",
	})
	reg.MustRegister(rejections, rateLimited, auditFailures)
	return &AuthMetrics{
		rejections:    rejections,
		rateLimited:   rateLimited,
		auditFailures: auditFailures,
	}
}

// IncRejection counts one gate rejection tagged with reason.
func (m *AuthMetrics) IncRejection(reason string) {
	if m == nil || m.rejections == nil {
		return
	}
	m.rejections.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncRateLimited counts one throttled auth request.
func (m *AuthMetrics) IncRateLimited(scope string) {
	if m == nil || m.rateLimited == nil {
		return
	}
	m.rateLimited.WithLabelValues(normalizeLabel(scope)).Inc()
}

// IncAuditFailure counts one audit event that failed to persist.
func (m *AuthMetrics) IncAuditFailure() {
	if m == nil || m.auditFailures == nil {
		return
	}
	m.auditFailures.Inc()
}

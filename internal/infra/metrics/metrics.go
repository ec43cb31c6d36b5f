package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Decisions counts moderation outcomes by kind (user, application) and
// decision (approved, banned, rejected).
var Decisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ratatoing_moderation_decisions_total",
	Help: "Moderation decisions taken, by entity kind and decision.",
}, []string{"kind", "decision"})

var Signups = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ratatoing_signups_total",
	Help: "Self-service signups received.",
})

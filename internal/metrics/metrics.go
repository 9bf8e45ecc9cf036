package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jonny/interactbot/internal/domain/model"
	"github.com/jonny/interactbot/internal/domain/port/outbound"
)

const namespace = "interactbot"

// Collectors holds the service's prometheus collectors and implements
// dispatch.Observer.
type Collectors struct {
	interactions     *prometheus.CounterVec
	acknowledgements *prometheus.CounterVec
	followUps        *prometheus.CounterVec
	handlerDuration  *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		interactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interactions_received_total",
			Help:      "Interactions received, by interaction type.",
		}, []string{"type"}),
		acknowledgements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "acknowledgements_total",
			Help:      "Initial acknowledgements returned, by response type.",
		}, []string{"response_type"}),
		followUps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "followups_total",
			Help:      "Follow-up deliveries, by target and result.",
		}, []string{"target", "result"}),
		handlerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "handler_duration_seconds",
			Help:      "Time from dispatch until the handler returned.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 3, 10, 60, 300, 900},
		}, []string{"kind", "result"}),
	}
	reg.MustRegister(c.interactions, c.acknowledgements, c.followUps, c.handlerDuration)
	return c
}

func (c *Collectors) InteractionReceived(t model.InteractionType) {
	c.interactions.WithLabelValues(t.String()).Inc()
}

func (c *Collectors) Acknowledged(t model.ResponseType) {
	c.acknowledgements.WithLabelValues(t.String()).Inc()
}

func (c *Collectors) HandlerFinished(kind string, elapsed time.Duration, err error) {
	c.handlerDuration.WithLabelValues(kind, result(err)).Observe(elapsed.Seconds())
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// InstrumentFollowUps wraps a FollowUpSender so each delivery is counted.
func (c *Collectors) InstrumentFollowUps(next outbound.FollowUpSender) outbound.FollowUpSender {
	return &instrumentedSender{next: next, counter: c.followUps}
}

type instrumentedSender struct {
	next    outbound.FollowUpSender
	counter *prometheus.CounterVec
}

func target(messageID string) string {
	switch messageID {
	case "":
		return "new"
	case outbound.OriginalMessage:
		return "original"
	default:
		return "message"
	}
}

func (s *instrumentedSender) Send(ctx context.Context, req outbound.FollowUpRequest) (model.Message, error) {
	msg, err := s.next.Send(ctx, req)
	s.counter.WithLabelValues(target(req.MessageID), result(err)).Inc()
	return msg, err
}

func (s *instrumentedSender) Delete(ctx context.Context, applicationID, token, messageID string) error {
	err := s.next.Delete(ctx, applicationID, token, messageID)
	s.counter.WithLabelValues("delete", result(err)).Inc()
	return err
}

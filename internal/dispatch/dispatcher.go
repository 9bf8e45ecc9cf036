package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/jonny/interactbot/internal/domain/interaction"
	"github.com/jonny/interactbot/internal/domain/model"
	"github.com/jonny/interactbot/internal/domain/port/inbound"
	"github.com/jonny/interactbot/internal/domain/port/outbound"
)

var (
	ErrMalformed       = errors.New("malformed interaction")
	ErrUnsupported     = errors.New("unsupported interaction type")
	ErrNotAcknowledged = errors.New("handler returned without acknowledging")
	ErrAckTimeout      = errors.New("handler did not acknowledge before the deadline")
)

const unknownInteractionMessage = "Unknown interaction."

// Observer receives lifecycle events for metrics.
type Observer interface {
	InteractionReceived(t model.InteractionType)
	Acknowledged(t model.ResponseType)
	HandlerFinished(kind string, elapsed time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) InteractionReceived(model.InteractionType)    {}
func (nopObserver) Acknowledged(model.ResponseType)              {}
func (nopObserver) HandlerFinished(string, time.Duration, error) {}

// Config holds dispatcher timing configuration.
type Config struct {
	// AckTimeout bounds the wait for the initial acknowledgement.
	AckTimeout time.Duration
	// TokenLifetime bounds background handler work and follow-ups.
	TokenLifetime time.Duration
}

// Dispatcher builds the façade for an interaction, runs its handler and
// waits for the initial acknowledgement. Handlers keep running in the
// background after acknowledging; Wait drains them.
type Dispatcher struct {
	cfg       Config
	registry  inbound.HandlerRegistry
	followUps outbound.FollowUpSender
	notifier  outbound.FailureNotifier
	observer  Observer
	logger    *slog.Logger
	wg        *conc.WaitGroup
	now       func() time.Time
}

type Option func(*Dispatcher)

func WithObserver(o Observer) Option {
	return func(d *Dispatcher) { d.observer = o }
}

func WithNotifier(n outbound.FailureNotifier) Option {
	return func(d *Dispatcher) { d.notifier = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(cfg Config, registry inbound.HandlerRegistry, followUps outbound.FollowUpSender, opts ...Option) *Dispatcher {
	if cfg.AckTimeout <= 0 {
		cfg.AckTimeout = 3 * time.Second
	}
	if cfg.TokenLifetime <= 0 {
		cfg.TokenLifetime = 15 * time.Minute
	}
	d := &Dispatcher{
		cfg:       cfg,
		registry:  registry,
		followUps: followUps,
		observer:  nopObserver{},
		logger:    slog.Default(),
		wg:        conc.NewWaitGroup(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) ackOptions() interaction.Options {
	return interaction.Options{
		FollowUps:     d.followUps,
		TokenLifetime: d.cfg.TokenLifetime,
		Now:           d.now,
	}
}

// Dispatch returns the initial acknowledgement for i.
func (d *Dispatcher) Dispatch(ctx context.Context, i model.Interaction) (model.Response, error) {
	d.observer.InteractionReceived(i.Type)

	switch i.Type {
	case model.InteractionTypePing:
		return model.Response{Type: model.ResponsePong}, nil

	case model.InteractionTypeApplicationCommand:
		c, err := interaction.NewCommand(i, d.ackOptions())
		if err != nil {
			return model.Response{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		h, ok := d.registry.LookupCommand(c.Name())
		if !ok {
			return d.unknown(i, c.Name()), nil
		}
		return d.run(ctx, i, c.Acknowledger(), c.Name(), func(ctx context.Context) error { return h(ctx, c) })

	case model.InteractionTypeMessageComponent:
		c, err := interaction.NewComponent(i, d.ackOptions())
		if err != nil {
			return model.Response{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		h, ok := d.registry.LookupComponent(c.CustomID())
		if !ok {
			return d.unknown(i, c.CustomID()), nil
		}
		return d.run(ctx, i, c.Acknowledger(), c.CustomID(), func(ctx context.Context) error { return h(ctx, c) })

	case model.InteractionTypeModalSubmit:
		m, err := interaction.NewModalSubmit(i, d.ackOptions())
		if err != nil {
			return model.Response{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		h, ok := d.registry.LookupModal(m.CustomID())
		if !ok {
			return d.unknown(i, m.CustomID()), nil
		}
		return d.run(ctx, i, m.Acknowledger(), m.CustomID(), func(ctx context.Context) error { return h(ctx, m) })

	default:
		return model.Response{}, fmt.Errorf("%w: %s", ErrUnsupported, i.Type)
	}
}

func (d *Dispatcher) unknown(i model.Interaction, name string) model.Response {
	d.logger.Warn("no handler registered", "interactionID", i.ID, "type", i.Type.String(), "name", name)
	resp := model.Response{
		Type: model.ResponseChannelMessage,
		Data: &model.MessageData{Content: unknownInteractionMessage, Flags: model.FlagEphemeral},
	}
	d.observer.Acknowledged(resp.Type)
	return resp
}

func (d *Dispatcher) run(ctx context.Context, i model.Interaction, ack *interaction.Acknowledger, name string, handler func(context.Context) error) (model.Response, error) {
	kind := i.Type.String()
	logger := d.logger.With("interactionID", i.ID, "type", kind, "name", name)
	logger.Debug("dispatching interaction")

	// The handler outlives the HTTP request once it has acknowledged.
	handlerCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.cfg.TokenLifetime)
	finished := make(chan error, 1)
	start := d.now()

	d.wg.Go(func() {
		defer cancel()
		var (
			catcher panics.Catcher
			err     error
		)
		catcher.Try(func() { err = handler(handlerCtx) })
		if rec := catcher.Recovered(); rec != nil {
			err = rec.AsError()
		}
		d.observer.HandlerFinished(kind, d.now().Sub(start), err)
		if err != nil && ack.Acknowledged() {
			d.reportFailure(i, name, failureKind(err), err)
		}
		finished <- err
	})

	timer := time.NewTimer(d.cfg.AckTimeout)
	defer timer.Stop()

	select {
	case <-ack.Done():
		return d.acknowledged(logger, ack)
	case err := <-finished:
		if ack.Acknowledged() {
			return d.acknowledged(logger, ack)
		}
		if err != nil {
			logger.Error("handler failed before acknowledging", "error", err)
			return model.Response{}, err
		}
		logger.Error("handler returned without acknowledging")
		return model.Response{}, ErrNotAcknowledged
	case <-timer.C:
		logger.Error("acknowledgement deadline exceeded", "timeout", d.cfg.AckTimeout)
		d.reportFailure(i, name, outbound.FailureTimeout, ErrAckTimeout)
		return model.Response{}, ErrAckTimeout
	}
}

func (d *Dispatcher) acknowledged(logger *slog.Logger, ack *interaction.Acknowledger) (model.Response, error) {
	resp, _ := ack.Response()
	d.observer.Acknowledged(resp.Type)
	logger.Info("interaction acknowledged", "response", resp.Type.String())
	return resp, nil
}

func failureKind(err error) outbound.FailureKind {
	var fe *interaction.FollowUpError
	if errors.As(err, &fe) {
		return outbound.FailureFollowUp
	}
	return outbound.FailureHandler
}

func (d *Dispatcher) reportFailure(i model.Interaction, name string, kind outbound.FailureKind, err error) {
	d.logger.Error("interaction handler failure",
		"interactionID", i.ID,
		"type", i.Type.String(),
		"name", name,
		"kind", string(kind),
		"error", err,
	)
	if d.notifier == nil {
		return
	}
	failure := outbound.HandlerFailure{
		Kind:          kind,
		InteractionID: i.ID,
		Type:          i.Type.String(),
		Name:          name,
		GuildID:       i.GuildID,
		Err:           err,
		OccurredAt:    d.now().UTC(),
	}
	if u := i.Invoker(); u != nil {
		failure.UserID = u.ID
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if nerr := d.notifier.NotifyFailure(ctx, failure); nerr != nil {
		d.logger.Warn("failure notification not delivered", "interactionID", i.ID, "error", nerr)
	}
}

// Wait blocks until every background handler has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

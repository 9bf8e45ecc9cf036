package webhook

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jonny/interactbot/internal/adapter/inbound/webhook/middleware"
	"github.com/jonny/interactbot/internal/dispatch"
	"github.com/jonny/interactbot/internal/domain/interaction"
	"github.com/jonny/interactbot/internal/domain/model"
	"github.com/jonny/interactbot/internal/domain/port/inbound"
	"github.com/jonny/interactbot/pkg/apierror"
)

// Handler serves the interactions endpoint. The request body must already be
// buffered and its signature verified.
type Handler struct {
	port   inbound.InteractionPort
	logger *slog.Logger
}

func NewHandler(port inbound.InteractionPort, logger *slog.Logger) *Handler {
	return &Handler{port: port, logger: logger}
}

// ServeHTTP decodes the interaction, dispatches it and writes the captured
// acknowledgement as the response body.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, ok := middleware.RawBody(r.Context())
	if !ok {
		apierror.Write(w, apierror.Internal("request body not buffered"))
		return
	}

	i, err := model.ParseInteraction(body)
	if err != nil {
		apierror.Write(w, apierror.WithDetail(http.StatusBadRequest, "malformed interaction", err.Error()))
		return
	}
	if i.Type == model.InteractionTypeAutocomplete {
		apierror.Write(w, apierror.BadRequest("autocomplete interactions are not supported"))
		return
	}

	resp, err := h.port.Dispatch(r.Context(), i)
	if err != nil {
		h.logger.Error("interaction not acknowledged",
			"requestID", middleware.RequestIDFrom(r.Context()),
			"interactionID", i.ID,
			"type", i.Type.String(),
			"error", err,
		)
		apierror.Write(w, errorFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Warn("writing acknowledgement", "interactionID", i.ID, "error", err)
	}
}

func errorFor(err error) *apierror.Error {
	switch {
	case errors.Is(err, dispatch.ErrMalformed), errors.Is(err, dispatch.ErrUnsupported):
		return apierror.WithDetail(http.StatusBadRequest, "unsupported interaction", err.Error())
	case errors.Is(err, dispatch.ErrAckTimeout):
		return apierror.Unavailable("interaction was not acknowledged in time")
	case errors.Is(err, interaction.ErrEmptyPayload), errors.Is(err, interaction.ErrInvalidTransition):
		return apierror.WithDetail(http.StatusInternalServerError, "invalid acknowledgement", err.Error())
	default:
		return apierror.Internal("interaction handler failed")
	}
}

// HealthHandler reports liveness of the interactions listener.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Shivanand-hulikatti/activity-board/internal/metrics"
	"github.com/Shivanand-hulikatti/activity-board/internal/model"
	"github.com/Shivanand-hulikatti/activity-board/internal/repository"
)

// Alerts shown by the unregister flow.
const (
	UnregisterFallbackError  = "Failed to unregister participant"
	UnregisterTransportError = "Network error while trying to unregister participant"
)

const flowUnregister = "unregister"

// DeleteTarget is the data carried by a clicked delete control: the
// participant's email and the activity the row belongs to.
type DeleteTarget struct {
	Email    string
	Activity string
}

// Unregister removes the participant identified by target after the user
// confirms. A target missing either field, or a declined confirmation, ends
// the flow without any request. Success refreshes the board; failures raise
// an alert and leave the list untouched.
func (b *Board) Unregister(ctx context.Context, target DeleteTarget) {
	if target.Email == "" || target.Activity == "" {
		return
	}

	entry := model.ParticipantEntry{Email: target.Email, Activity: target.Activity}
	if !b.view.Confirm(entry.ConfirmPrompt()) {
		b.recorder.FlowCompleted(flowUnregister, metrics.OutcomeAborted)
		return
	}

	reqID := uuid.NewString()
	ctx = repository.WithRequestID(ctx, reqID)
	ctx, span := b.tracer.Start(ctx, "board.unregister")
	defer span.End()
	span.SetAttributes(attribute.String("board.activity", target.Activity))

	log := b.log.WithFields(map[string]interface{}{
		"flow":       flowUnregister,
		"activity":   target.Activity,
		"request_id": reqID,
	})

	resp, err := b.api.Unregister(ctx, target.Activity, target.Email)

	var apiErr *repository.APIError
	switch {
	case err == nil:
		b.Refresh(ctx)
		b.recorder.FlowCompleted(flowUnregister, metrics.OutcomeSuccess)
		log.Info("unregistered", map[string]interface{}{"message": resp.Message})

	case errors.As(err, &apiErr):
		b.view.Alert(apiErr.MessageOr(UnregisterFallbackError))
		span.SetStatus(codes.Error, "unregister rejected")
		b.recorder.FlowCompleted(flowUnregister, metrics.OutcomeRejected)
		log.Warn("unregister rejected", map[string]interface{}{"status": apiErr.Status, "detail": apiErr.MessageOr("")})

	default:
		b.view.Alert(UnregisterTransportError)
		span.RecordError(err)
		span.SetStatus(codes.Error, "unregister failed")
		b.recorder.FlowCompleted(flowUnregister, metrics.OutcomeTransport)
		log.WithError(err).Error("unregister error", nil)
	}
}

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

// Messages shown by the signup flow.
const (
	SignupFallbackError  = "An error occurred"
	SignupTransportError = "Failed to sign up. Please try again."
)

const flowSignup = "signup"

// SignupForm is the payload of a signup form submission.
type SignupForm struct {
	Email    string
	Activity string
}

// Submit registers email for activity.
//
// On success the server's message is shown, the form is reset and the board
// refreshes. On an API failure the server's detail is shown and nothing is
// refreshed. Both outcomes hide the message after the message timeout. A
// transport failure shows a generic error that stays until replaced.
func (b *Board) Submit(ctx context.Context, email, activity string) {
	reqID := uuid.NewString()
	ctx = repository.WithRequestID(ctx, reqID)
	ctx, span := b.tracer.Start(ctx, "board.signup")
	defer span.End()
	span.SetAttributes(attribute.String("board.activity", activity))

	log := b.log.WithFields(map[string]interface{}{
		"flow":       flowSignup,
		"activity":   activity,
		"request_id": reqID,
	})

	resp, err := b.api.Signup(ctx, activity, email)

	var apiErr *repository.APIError
	switch {
	case err == nil:
		gen := b.showMessage(resp.Message, model.MessageSuccess, true)
		b.view.ResetForm()
		b.Refresh(ctx)
		b.scheduleHide(gen)
		b.recorder.FlowCompleted(flowSignup, metrics.OutcomeSuccess)
		log.Info("signed up", nil)

	case errors.As(err, &apiErr):
		gen := b.showMessage(apiErr.DetailOr(SignupFallbackError), model.MessageError, true)
		b.scheduleHide(gen)
		span.SetStatus(codes.Error, "signup rejected")
		b.recorder.FlowCompleted(flowSignup, metrics.OutcomeRejected)
		log.Warn("signup rejected", map[string]interface{}{"status": apiErr.Status, "detail": apiErr.Detail})

	default:
		b.showMessage(SignupTransportError, model.MessageError, false)
		span.RecordError(err)
		span.SetStatus(codes.Error, "signup failed")
		b.recorder.FlowCompleted(flowSignup, metrics.OutcomeTransport)
		log.WithError(err).Error("error signing up", nil)
	}
}

package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Shivanand-hulikatti/activity-board/internal/metrics"
	"github.com/Shivanand-hulikatti/activity-board/internal/render"
)

// Refresh re-fetches the catalog and rebuilds the list and the select.
//
// On any failure the list is replaced with a fixed failure message and the
// select is left as it was. Errors are logged, never returned: the list ends
// either fully rendered or showing the failure message.
func (b *Board) Refresh(ctx context.Context) {
	ctx, span := b.tracer.Start(ctx, "board.refresh")
	defer span.End()
	start := time.Now()

	list, options, err := b.renderCatalog(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load activities")
		b.log.WithError(err).Error("error fetching activities", nil)
		b.view.ReplaceList(render.LoadFailureHTML)
		b.recorder.RefreshObserved(metrics.OutcomeTransport, time.Since(start))
		return
	}

	b.view.ReplaceList(list)
	b.view.ReplaceOptions(options)
	b.recorder.RefreshObserved(metrics.OutcomeSuccess, time.Since(start))
	b.log.Debug("activities refreshed", map[string]interface{}{"duration_ms": time.Since(start).Milliseconds()})
}

// renderCatalog fetches and renders both fragments before anything touches
// the view.
func (b *Board) renderCatalog(ctx context.Context) (string, string, error) {
	catalog, err := b.api.List(ctx)
	if err != nil {
		return "", "", err
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("board.activities", catalog.Len()))

	list, err := render.String(ctx, render.ActivityList(catalog))
	if err != nil {
		return "", "", err
	}
	options, err := render.String(ctx, render.SelectOptions(catalog))
	if err != nil {
		return "", "", err
	}
	return list, options, nil
}

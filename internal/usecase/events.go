package usecase

import (
	"context"
	"time"

	"FinSight/internal/domain/models"
	domrepo "FinSight/internal/domain/repository"
	xlogger "FinSight/pkg/logger"

	"github.com/google/uuid"
)

const publishTimeout = 2 * time.Second

// publishEvent emits ev without failing the caller. The request context may
// already be done when the event is sent, so only its values are kept.
func publishEvent(ctx context.Context, pub domrepo.EventPublisher, l *xlogger.Logger, typ, ticker string, payload any) {
	if pub == nil {
		return
	}
	ev := models.Event{
		ID:        uuid.NewString(),
		Type:      typ,
		Ticker:    ticker,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := pub.Publish(pctx, ev); err != nil {
		l.Warn("event publish failed",
			xlogger.String("type", typ),
			xlogger.String("ticker", ticker),
			xlogger.Error(err),
		)
	}
}

// recordError counts err by its domain kind.
func recordError(m domrepo.Metrics, err error) {
	if m == nil || err == nil {
		return
	}
	kind, ok := models.KindOf(err)
	if !ok {
		kind = "INTERNAL"
	}
	m.RecordError(string(kind))
}

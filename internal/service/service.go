package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/events"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// lookupError turns a repository read failure into NOT_FOUND or a mapped error.
func lookupError(err error, resource string, details map[string]any) error {
	if apperrors.IsNoRows(err) {
		return apperrors.NewNotFound(resource, details)
	}
	return apperrors.MapError(err)
}

// publisher wraps a dispatcher so failed handlers are logged, never returned.
type publisher struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

func (p publisher) publish(ctx context.Context, eventType events.EventType, ticketID string, actor auth.Subject, payload interface{}) {
	if p.dispatcher == nil {
		return
	}
	event := events.New(eventType, ticketID, events.Actor{UserID: actor.UserID, Role: actor.Role}, payload)
	if err := p.dispatcher.Publish(ctx, event); err != nil && p.logger != nil {
		p.logger.Warn("event handler failed",
			zap.String("event_type", string(eventType)),
			zap.String("ticket_id", ticketID),
			zap.Error(err))
	}
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

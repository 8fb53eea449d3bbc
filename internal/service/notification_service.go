package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/fellowship-hq/fellowship-api/internal/dto"
	"github.com/fellowship-hq/fellowship-api/internal/models"
	"github.com/fellowship-hq/fellowship-api/internal/observability"
	"github.com/fellowship-hq/fellowship-api/internal/repository"
)

const dispatchTimeout = 5 * time.Second

// DeliveryHook receives notifications consumed from the fan-out channels.
// Email or push transports plug in here; the default hook just logs.
type DeliveryHook interface {
	Deliver(ctx context.Context, notification dto.NotificationResponse) error
}

// NotificationDispatcher persists and fans out workflow notifications.
// Dispatch is best-effort by contract: callers fire it after their own
// writes commit, and a lost notification never fails the workflow.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, message dto.NotificationMessage) (dto.NotificationResponse, error)
	DispatchAsync(correlationID string, message dto.NotificationMessage)
	Start(ctx context.Context)
}

type notificationDispatcher struct {
	repo         repository.NotificationRepository
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	validator    *validator.Validate
	logger       zerolog.Logger
	tracer       trace.Tracer
	sanitizer    *bluemonday.Policy
	delivery     DeliveryHook
	nodeID       string
}

type notificationEvent struct {
	Source       string                   `json:"source"`
	Notification dto.NotificationResponse `json:"notification"`
	SentAt       time.Time                `json:"sent_at"`
}

// NewNotificationDispatcher constructs the notification dispatcher.
func NewNotificationDispatcher(repo repository.NotificationRepository, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, delivery DeliveryHook, validate *validator.Validate, logger zerolog.Logger) NotificationDispatcher {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":notifications"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".notifications"
	}

	return &notificationDispatcher{
		repo:         repo,
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		validator:    validate,
		logger:       logger.With().Str("component", "notification_dispatcher").Logger(),
		tracer:       otel.Tracer("github.com/fellowship-hq/fellowship-api/internal/service/notification"),
		sanitizer:    bluemonday.StrictPolicy(),
		delivery:     delivery,
		nodeID:       uuid.NewString(),
	}
}

func (s *notificationDispatcher) Start(ctx context.Context) {
	if s.redis != nil && s.redisChannel != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

func (s *notificationDispatcher) Dispatch(ctx context.Context, message dto.NotificationMessage) (dto.NotificationResponse, error) {
	if err := s.validator.Struct(message); err != nil {
		return dto.NotificationResponse{}, err
	}

	cleanBody := strings.TrimSpace(s.sanitizer.Sanitize(message.Body))

	attrs := []attribute.KeyValue{
		attribute.Int("notification.member_id", int(message.MemberID)),
		attribute.String("notification.type", message.Type),
	}
	spanCtx, span := s.tracer.Start(ctx, "notifications.dispatch", trace.WithAttributes(attrs...))
	defer span.End()

	model := models.Notification{
		MemberID: message.MemberID,
		Type:     message.Type,
		Subject:  message.Subject,
		Body:     cleanBody,
		Metadata: datatypes.JSONMap(message.Metadata),
		Status:   models.NotificationStatusQueued,
	}
	if err := s.repo.Create(spanCtx, &model); err != nil {
		span.RecordError(err)
		observability.NotificationsDispatchedTotal().WithLabelValues(message.Type, models.NotificationStatusFailed).Inc()
		return dto.NotificationResponse{}, err
	}

	response := dto.NewNotificationResponse(model)
	status := models.NotificationStatusSent
	if err := s.publish(spanCtx, response); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish notification to fan-out channels")
		status = models.NotificationStatusFailed
	}

	if err := s.repo.UpdateStatus(spanCtx, model.ID, status); err != nil {
		s.logger.Warn().Err(err).Uint("notification_id", model.ID).Msg("failed to update notification status")
	}
	response.Status = status

	observability.NotificationsDispatchedTotal().WithLabelValues(response.Type, status).Inc()
	return response, nil
}

// DispatchAsync fires the dispatch on a detached context. Failures are
// logged and swallowed; the triggering request never waits or rolls back.
func (s *notificationDispatcher) DispatchAsync(correlationID string, message dto.NotificationMessage) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		if _, err := s.Dispatch(ctx, message); err != nil {
			s.logger.Error().
				Err(err).
				Str("correlation_id", correlationID).
				Uint("member_id", message.MemberID).
				Str("type", message.Type).
				Msg("notification dispatch failed")
		}
	}()
}

func (s *notificationDispatcher) publish(ctx context.Context, notification dto.NotificationResponse) error {
	event := notificationEvent{
		Source:       s.nodeID,
		Notification: notification,
		SentAt:       time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisChannel != "" {
		if err := s.redis.Publish(ctx, s.redisChannel, payload).Err(); err != nil {
			return err
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}

func (s *notificationDispatcher) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisChannel)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("notification redis subscription closed")
			return
		}
		s.handleEvent(ctx, []byte(msg.Payload))
	}
}

func (s *notificationDispatcher) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "fellowship-notifications", func(msg *nats.Msg) {
		s.handleEvent(ctx, msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats notifications subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain notification nats subscription")
		}
	}()
}

func (s *notificationDispatcher) handleEvent(ctx context.Context, payload []byte) {
	var event notificationEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid notification event payload")
		return
	}

	if event.Source == s.nodeID {
		return
	}

	if s.delivery == nil {
		return
	}
	if err := s.delivery.Deliver(ctx, event.Notification); err != nil {
		s.logger.Warn().Err(err).Uint("notification_id", event.Notification.ID).Msg("notification delivery hook failed")
	}
}

// logDelivery is the default delivery hook: it records the notification in
// the service log and nothing more.
type logDelivery struct {
	logger zerolog.Logger
}

// NewLogDelivery constructs a delivery hook that only logs.
func NewLogDelivery(logger zerolog.Logger) DeliveryHook {
	return &logDelivery{logger: logger.With().Str("component", "notification_delivery").Logger()}
}

func (d *logDelivery) Deliver(_ context.Context, notification dto.NotificationResponse) error {
	d.logger.Info().
		Uint("member_id", notification.MemberID).
		Str("type", notification.Type).
		Str("subject", notification.Subject).
		Msg("notification delivered")
	return nil
}

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"quzz-ai-api/internal/domain/entity"
	"quzz-ai-api/pkg/metrics"
)

var tracer = otel.Tracer("messaging")

// Producer 消息生产者
type Producer struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewProducer 创建消息生产者
func NewProducer(client *redis.Client, stream string, maxLen int64) *Producer {
	if maxLen <= 0 {
		maxLen = 10000
	}
	return &Producer{client: client, stream: stream, maxLen: maxLen}
}

// Publish 发布消息到流
func (p *Producer) Publish(ctx context.Context, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("stream", p.stream),
			attribute.String("message.id", msg.ID),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	result, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]any{
			"type": msg.Type,
			"data": string(data),
		},
	}).Result()
	if err != nil {
		span.RecordError(err)
		metrics.EventsPublishedTotal.WithLabelValues(msg.Type, "error").Inc()
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	metrics.EventsPublishedTotal.WithLabelValues(msg.Type, "ok").Inc()
	span.SetAttributes(attribute.String("stream.message_id", result))
	return result, nil
}

// PublishWizardCompleted 会话进入 DASHBOARD 后发布
func (p *Producer) PublishWizardCompleted(ctx context.Context, session *entity.WizardSession) error {
	msg, err := NewWizardCompletedMessage(session)
	if err != nil {
		return err
	}
	_, err = p.Publish(ctx, msg)
	return err
}

// NewWizardCompletedMessage 从会话蓝图构建完成事件
func NewWizardCompletedMessage(session *entity.WizardSession) (*Message, error) {
	if session == nil || session.State.Blueprint == nil {
		return nil, errors.New("session has no blueprint")
	}
	bp := session.State.Blueprint
	roles := make([]string, 0, len(bp.Roles))
	for _, r := range bp.Roles {
		roles = append(roles, r.Title)
	}
	payload := WizardCompletedPayload{
		TeamName:      bp.Team.Name,
		TechStack:     bp.Team.TechStack,
		Roles:         roles,
		Structure:     string(bp.Template.Structure),
		Conventions:   bp.Template.Conventions,
		BackendFiles:  len(bp.TechSpec.Backend.Files),
		FrontendFiles: len(bp.TechSpec.Frontend.Files),
	}
	msg, err := NewMessage(uuid.NewString(), TypeWizardCompleted, session.ID, payload)
	if err != nil {
		return nil, err
	}
	msg.SetMetadata("step", string(session.State.Step))
	return msg, nil
}

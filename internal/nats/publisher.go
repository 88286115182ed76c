package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"sudooom.daifugo/internal/room"
)

// EventPublisher 房间事件发布器
type EventPublisher struct {
	nc       *nats.Conn
	subjects Subjects
	logger   *slog.Logger
}

// NewEventPublisher 创建房间事件发布器
func NewEventPublisher(nc *nats.Conn, subjects Subjects) *EventPublisher {
	return &EventPublisher{
		nc:       nc,
		subjects: subjects,
		logger:   slog.Default().With("component", "EventPublisher"),
	}
}

// Publish 发布房间事件
func (p *EventPublisher) Publish(ctx context.Context, ev room.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	subject := p.subjects.RoomEvents(ev.RoomID)
	data, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error("Failed to marshal event", "roomId", ev.RoomID, "type", ev.Type, "error", err)
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Error("Failed to publish event", "roomId", ev.RoomID, "type", ev.Type, "error", err)
		return fmt.Errorf("publish event: %w", err)
	}

	p.logger.Debug("Published room event", "roomId", ev.RoomID, "type", ev.Type, "subject", subject)
	return nil
}

// ContactNotifier 把代管通知发给外部邮件 / 短信服务
type ContactNotifier struct {
	nc       *nats.Conn
	subjects Subjects
	logger   *slog.Logger
}

// NewContactNotifier 创建联系通知发布器
func NewContactNotifier(nc *nats.Conn, subjects Subjects) *ContactNotifier {
	return &ContactNotifier{
		nc:       nc,
		subjects: subjects,
		logger:   slog.Default().With("component", "ContactNotifier"),
	}
}

// NotifyContact 发布联系通知
func (n *ContactNotifier) NotifyContact(ctx context.Context, notice room.ContactNotice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("marshal contact notice: %w", err)
	}

	if err := n.nc.Publish(n.subjects.ContactNotify(), data); err != nil {
		n.logger.Error("Failed to publish contact notice", "roomId", notice.RoomID, "playerId", notice.PlayerID, "error", err)
		return fmt.Errorf("publish contact notice: %w", err)
	}

	n.logger.Info("Contact notice published", "roomId", notice.RoomID, "playerId", notice.PlayerID, "reason", notice.Reason)
	return nil
}

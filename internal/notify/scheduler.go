package notify

import (
	"context"
	"fmt"

	"github.com/streadway/amqp"
)

// Notification ежедневное локальное уведомление. Уведомление с тем же ID
// перезаписывает ранее запланированное.
type Notification struct {
	ID      string `json:"id"`
	Channel string `json:"channel"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	Hour    int    `json:"hour"`
	Minute  int    `json:"minute"`
}

// Scheduler планирует и отменяет ежедневные уведомления.
type Scheduler interface {
	Schedule(ctx context.Context, n Notification) error
	Cancel(ctx context.Context, id string) error
}

// Действия команд планировщика.
const (
	actionSchedule = "schedule"
	actionCancel   = "cancel"
)

type command struct {
	Action       string        `json:"action"`
	Notification *Notification `json:"notification,omitempty"`
	ID           string        `json:"id,omitempty"`
}

// QueueScheduler доставляет команды планирования в очередь напоминаний.
// Воркер на другой стороне очереди выставляет уведомления устройству.
type QueueScheduler struct {
	ch         *amqp.Channel
	routingKey string
}

// NewQueueScheduler создает планировщик поверх открытого канала RabbitMQ.
func NewQueueScheduler(ch *amqp.Channel) *QueueScheduler {
	return &QueueScheduler{ch: ch, routingKey: "reminder"}
}

// Schedule публикует команду планирования уведомления.
func (s *QueueScheduler) Schedule(ctx context.Context, n Notification) error {
	const op = "notify.QueueScheduler.Schedule"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if err := PublishMessage(s.ch, Exchange, s.routingKey, command{
		Action:       actionSchedule,
		Notification: &n,
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Cancel публикует команду отмены уведомления по его ID.
func (s *QueueScheduler) Cancel(ctx context.Context, id string) error {
	const op = "notify.QueueScheduler.Cancel"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if err := PublishMessage(s.ch, Exchange, s.routingKey, command{
		Action: actionCancel,
		ID:     id,
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MailMessage письмо, отправляемое через очередь почты.
type MailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Mailer отправляет служебные письма.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// QueueMailer доставляет письма в очередь почты.
type QueueMailer struct {
	ch         *amqp.Channel
	routingKey string
}

// NewQueueMailer создает отправителя писем поверх открытого канала RabbitMQ.
func NewQueueMailer(ch *amqp.Channel) *QueueMailer {
	return &QueueMailer{ch: ch, routingKey: "email"}
}

// Send публикует письмо в очередь почты.
func (m *QueueMailer) Send(ctx context.Context, msg MailMessage) error {
	const op = "notify.QueueMailer.Send"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if err := PublishMessage(m.ch, Exchange, m.routingKey, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Package events 将账本事件投递到 RabbitMQ topic exchange。
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cyberregistro/ledger/internal/config"
	"github.com/cyberregistro/ledger/internal/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrPublisherClosed 发布器已关闭
var ErrPublisherClosed = errors.New("event publisher closed")

// Event 账本事件
type Event struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// PaymentConfirmedData 入账完成事件数据
type PaymentConfirmedData struct {
	TransactionID uint   `json:"transaction_id"`
	UserID        uint   `json:"user_id"`
	PaymentID     string `json:"payment_id"`
	Quantity      int64  `json:"quantity"`
	Amount        string `json:"amount"`
	CouponID      *uint  `json:"coupon_id,omitempty"`
}

// CouponRedeemedData 优惠券核销事件数据
type CouponRedeemedData struct {
	CouponID      uint   `json:"coupon_id"`
	UserID        uint   `json:"user_id"`
	TransactionID uint   `json:"transaction_id"`
	PaymentID     string `json:"payment_id"`
}

// Publisher 事件发布接口
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event Event) error
	Close() error
}

// NewPublisher 按配置创建发布器；未启用时返回空实现
func NewPublisher(cfg config.EventsConfig) (Publisher, error) {
	if !cfg.Enabled {
		return NoopPublisher{}, nil
	}
	return NewAMQPPublisher(cfg.URL, cfg.Exchange)
}

// NoopPublisher 未配置消息队列时使用
type NoopPublisher struct{}

// Publish 丢弃事件
func (NoopPublisher) Publish(context.Context, string, Event) error { return nil }

// Close 无操作
func (NoopPublisher) Close() error { return nil }

// AMQPPublisher RabbitMQ 发布器
type AMQPPublisher struct {
	url      string
	exchange string

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	closed  bool
}

// NewAMQPPublisher 连接 RabbitMQ 并声明 topic exchange
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	exchange = strings.TrimSpace(exchange)
	if exchange == "" {
		return nil, fmt.Errorf("exchange is required")
	}
	p := &AMQPPublisher{url: url, exchange: exchange}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *AMQPPublisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("failed to dial RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		p.exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	p.conn = conn
	p.channel = ch
	logger.Infow("events_publisher_connected", "exchange", p.exchange)
	return nil
}

// Publish 发布事件，连接断开时重连一次
func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPublisherClosed
	}
	if p.conn == nil || p.conn.IsClosed() {
		if err := p.connect(); err != nil {
			return err
		}
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		Type:         event.Type,
		Body:         body,
	}
	if err := p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}
	return nil
}

// Close 关闭通道与连接
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

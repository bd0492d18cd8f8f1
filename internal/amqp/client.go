package amqp

import (
	"absence-bot/internal/logger"
	"absence-bot/internal/models"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	publishTimeout = 5 * time.Second
	maxBackoff     = 30 * time.Second
)

var ErrNotConnected = errors.New("amqp: not connected")

type Client struct {
	url          string
	exchangeName string
	queueName    string

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
	logger  *logrus.Logger
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	client := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		logger:       logger.Get(),
	}
	if err := client.connect(); err != nil {
		return nil, err
	}
	return client, nil
}

func (c *Client) connect() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	c.conn = conn
	c.channel = channel

	if err := c.setup(); err != nil {
		c.closeLocked()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}
	return nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// routing key совпадает с именем очереди
	if err := c.channel.QueueBind(c.queueName, c.queueName, c.exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// PublishAbsenceSubmitted публикует событие absence.submitted.
// При обрыве соединения делается одна попытка переподключения.
func (c *Client) PublishAbsenceSubmitted(ctx context.Context, user *models.User, batchID string, rows []models.Absence) error {
	msg := NewAbsenceSubmittedMessage(user, batchID, rows)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err = c.publishLocked(ctx, body)
	if err != nil && isConnectionError(err) {
		c.logger.Warnf("AMQP connection lost, reconnecting: %v", err)
		c.closeLocked()
		if rerr := c.connect(); rerr != nil {
			return fmt.Errorf("reconnect: %w", rerr)
		}
		err = c.publishLocked(ctx, body)
	}
	if err != nil {
		return err
	}

	c.logger.WithFields(logrus.Fields{
		"batch_id": batchID,
		"dates":    len(msg.Dates),
		"exchange": c.exchangeName,
		"queue":    c.queueName,
	}).Info("Published absence.submitted")
	return nil
}

func (c *Client) publishLocked(ctx context.Context, body []byte) error {
	if c.channel == nil || c.channel.IsClosed() {
		return ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Type:         EventAbsenceSubmitted,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// ConsumeAbsenceSubmitted читает события из очереди до отмены контекста
func (c *Client) ConsumeAbsenceSubmitted(ctx context.Context, handler func(*AbsenceSubmittedMessage) error) error {
	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()
	if channel == nil {
		return ErrNotConnected
	}

	msgs, err := channel.Consume(c.queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			switch c.dispatch(delivery.Body, handler) {
			case actionAck:
				delivery.Ack(false)
			case actionRequeue:
				delivery.Nack(false, true)
			default:
				delivery.Nack(false, false)
			}
		}
	}
}

// deliveryAction - что сделать с сообщением после обработки
type deliveryAction int

const (
	actionAck deliveryAction = iota
	actionDrop
	actionRequeue
)

// dispatch разбирает тело и передает сообщение обработчику.
// Битое сообщение отбрасывается, ошибка обработчика возвращает его в очередь.
func (c *Client) dispatch(body []byte, handler func(*AbsenceSubmittedMessage) error) deliveryAction {
	msg, err := AbsenceSubmittedMessageFromJSON(body)
	if err != nil {
		c.logger.Errorf("Failed to unmarshal message: %v", err)
		return actionDrop
	}
	if msg.Event != "" && msg.Event != EventAbsenceSubmitted {
		c.logger.Warnf("Unexpected event %q, dropping", msg.Event)
		return actionDrop
	}
	if err := handler(msg); err != nil {
		c.logger.WithField("batch_id", msg.BatchID).Errorf("Failed to handle message: %v", err)
		return actionRequeue
	}
	return actionAck
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Client) closeLocked() error {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		if err != nil && !errors.Is(err, amqp091.ErrClosed) {
			return err
		}
	}
	return nil
}

// ConnectWithRetry подключается с экспоненциальной задержкой между попытками
func ConnectWithRetry(ctx context.Context, url, exchangeName, queueName string, attempts int) (*Client, error) {
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		client, err := NewClient(url, exchangeName, queueName)
		if err == nil {
			return client, nil
		}
		lastErr = err
		delay := exponentialBackoff(attempt)
		logger.Get().Warnf("AMQP connect attempt %d failed, retrying in %s: %v", attempt+1, delay, err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("connect AMQP after %d attempts: %w", attempts, lastErr)
}

func exponentialBackoff(attempt int) time.Duration {
	if attempt > 5 {
		return maxBackoff
	}
	d := time.Second << uint(attempt)
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) || errors.Is(err, ErrNotConnected) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection", "eof", "broken pipe", "channel/connection is not open"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

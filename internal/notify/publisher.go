// Package notify publishes navigator stage changes to RabbitMQ.
package notify

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

// Exchange is the topic exchange stage updates go to.
const Exchange = "session_updates"

// Update is the body of one published message.
type Update struct {
	SessionID string    `json:"session_id"`
	Stage     string    `json:"stage"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// RoutingKey addresses updates of one session.
func RoutingKey(sessionID string) string {
	return fmt.Sprintf("session.%s", sessionID)
}

// Encode builds the AMQP message for u.
func Encode(u Update) (amqp.Publishing, error) {
	body, err := json.Marshal(u)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode session update: %w", err)
	}
	return amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   u.Timestamp,
		Body:        body,
	}, nil
}

type Publisher struct {
	mu   sync.Mutex
	conn *amqp.Connection
}

// Dial connects to url and declares the update exchange.
func Dial(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("error connecting to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("error opening rabbitmq channel: %w", err)
	}
	defer ch.Close()

	err = ch.ExchangeDeclare(
		Exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-delete
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return &Publisher{conn: conn}, nil
}

// Publish sends u on a short-lived channel.
func (p *Publisher) Publish(u Update) error {
	msg, err := Encode(u)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	return ch.Publish(
		Exchange,
		RoutingKey(u.SessionID),
		false, // mandatory
		false, // immediate
		msg,
	)
}

func (p *Publisher) Close() error {
	return p.conn.Close()
}

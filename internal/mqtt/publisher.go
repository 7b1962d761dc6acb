// internal/mqtt/publisher.go
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/tamzrod/inverter-monitor/internal/alerts"
)

// publishTimeout bounds how long one publish may wait for the broker.
const publishTimeout = 5 * time.Second

// tokenPublisher is the slice of paho.Client the publisher uses.
type tokenPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// Publisher drains alerts from a channel and publishes them.
type Publisher struct {
	client tokenPublisher
	in     <-chan alerts.Alert
	topic  string // e.g. "inverter/alert/{code}"
	qos    byte
	log    zerolog.Logger
}

// PublisherConfig holds configuration for the alert publisher.
type PublisherConfig struct {
	Topic string
	QoS   byte
}

// NewPublisher creates a publisher reading from in.
func NewPublisher(client tokenPublisher, config PublisherConfig, in <-chan alerts.Alert, log zerolog.Logger) *Publisher {
	return &Publisher{
		client: client,
		in:     in,
		topic:  config.Topic,
		qos:    config.QoS,
		log:    log,
	}
}

// Start publishes alerts until ctx is cancelled or the channel is closed.
func (p *Publisher) Start(ctx context.Context) {
	p.log.Info().Str("topic", p.topic).Msg("alert publisher started")

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("alert publisher stopped")
			return

		case a, ok := <-p.in:
			if !ok {
				p.log.Info().Msg("alert channel closed, publisher stopped")
				return
			}
			if err := p.Publish(a); err != nil {
				p.log.Error().Err(err).Str("code", a.Code).Msg("alert publish failed")
			}
		}
	}
}

// Publish sends one alert.
func (p *Publisher) Publish(a alerts.Alert) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("mqtt: marshal alert %s: %w", a.Code, err)
	}

	topic := formatTopic(p.topic, a.Code)

	token := p.client.Publish(topic, p.qos, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("mqtt: publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt: publish to %s: %w", topic, err)
	}

	p.log.Debug().Str("topic", topic).Msg("alert published")
	return nil
}

// formatTopic replaces the {code} placeholder with the alert code.
func formatTopic(pattern, code string) string {
	return strings.ReplaceAll(pattern, "{code}", code)
}

// internal/mqtt/publisher_test.go
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/inverter-monitor/internal/alerts"
)

type fakeToken struct {
	err      error
	timedOut bool
}

func (t *fakeToken) Wait() bool                     { return !t.timedOut }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.timedOut }
func (t *fakeToken) Error() error                   { return t.err }

func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if !t.timedOut {
		close(ch)
	}
	return ch
}

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type fakeBroker struct {
	mu    sync.Mutex
	msgs  []published
	token *fakeToken
}

func (b *fakeBroker) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = append(b.msgs, published{topic: topic, qos: qos, payload: payload.([]byte)})
	if b.token != nil {
		return b.token
	}
	return &fakeToken{}
}

func (b *fakeBroker) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.msgs)
}

func TestFormatTopic(t *testing.T) {
	assert.Equal(t, "inverter/alert/04", formatTopic("inverter/alert/{code}", "04"))
	assert.Equal(t, "alerts", formatTopic("alerts", "04"))
}

func TestPublisher_Publish(t *testing.T) {
	b := &fakeBroker{}
	p := NewPublisher(b, PublisherConfig{Topic: "inverter/alert/{code}", QoS: 1}, nil, zerolog.Nop())

	a := alerts.Alert{Code: "03", Title: "Low battery", Message: "Battery at 22.8V", Time: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	require.NoError(t, p.Publish(a))

	require.Len(t, b.msgs, 1)
	assert.Equal(t, "inverter/alert/03", b.msgs[0].topic)
	assert.Equal(t, byte(1), b.msgs[0].qos)

	var body map[string]string
	require.NoError(t, json.Unmarshal(b.msgs[0].payload, &body))
	assert.Equal(t, "03", body["code"])
	assert.Equal(t, "2024-05-01 09:00:00 AM", body["time"])
}

func TestPublisher_PublishErrors(t *testing.T) {
	b := &fakeBroker{token: &fakeToken{err: errors.New("not connected")}}
	p := NewPublisher(b, PublisherConfig{Topic: "a/{code}"}, nil, zerolog.Nop())
	assert.Error(t, p.Publish(alerts.Alert{Code: "01"}))

	b.token = &fakeToken{timedOut: true}
	assert.Error(t, p.Publish(alerts.Alert{Code: "01"}))
}

func TestPublisher_StartDrainsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan alerts.Alert, 4)
	b := &fakeBroker{}
	p := NewPublisher(b, PublisherConfig{Topic: "inverter/alert/{code}"}, in, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		p.Start(ctx)
		close(done)
	}()

	in <- alerts.Alert{Code: "04"}
	in <- alerts.Alert{Code: "05"}
	require.Eventually(t, func() bool { return b.count() == 2 }, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop")
	}
}

func TestPublisher_StopsOnClosedChannel(t *testing.T) {
	in := make(chan alerts.Alert)
	p := NewPublisher(&fakeBroker{}, PublisherConfig{}, in, zerolog.Nop())
	close(in)

	done := make(chan struct{})
	go func() {
		p.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop")
	}
}

package amqp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pft/internal/core"
	"pft/internal/log"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{15, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			if got := exponentialBackoff(tt.attempt); got != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"closed", amqp091.ErrClosed, true},
		{"wrapped closed", fmt.Errorf("publish: %w", amqp091.ErrClosed), true},
		{"connection refused", errors.New("connection refused"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"other", errors.New("NOT_FOUND - no exchange"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isConnectionError(tt.err))
		})
	}
}

type fakeChannel struct {
	mu        sync.Mutex
	err       error
	published []amqp091.Publishing
	keys      []string
	closed    bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp091.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	f.keys = append(f.keys, key)
	return nil
}

func (f *fakeChannel) Close() error { f.closed = true; return nil }

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func newTestPublisher(t *testing.T, channels ...*fakeChannel) (*Publisher, *int) {
	t.Helper()
	dials := 0
	connect := func() (channel, io.Closer, error) {
		if dials >= len(channels) {
			return nil, nil, errors.New("connection refused")
		}
		ch := channels[dials]
		dials++
		return ch, nopCloser{}, nil
	}
	p, err := newPublisher("pft", "record.created", connect, log.Discard())
	require.NoError(t, err)
	p.sleep = func(context.Context, time.Duration) error { return nil }
	return p, &dials
}

var testEvent = core.RecordCreated{Kind: core.KindIncome, Label: "Salary", Amount: "2500", CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}

func TestPublisher_Publishes(t *testing.T) {
	ch := &fakeChannel{}
	p, _ := newTestPublisher(t, ch)

	require.NoError(t, p.PublishRecordCreated(context.Background(), testEvent))
	require.Len(t, ch.published, 1)
	assert.Equal(t, "record.created", ch.keys[0])
	assert.Equal(t, "application/json", ch.published[0].ContentType)

	msg, err := RecordMessageFromJSON(ch.published[0].Body)
	require.NoError(t, err)
	assert.Equal(t, MessageVersion, msg.Version)
	assert.Equal(t, testEvent, msg.Event)
}

func TestPublisher_ReconnectsAfterConnectionError(t *testing.T) {
	broken := &fakeChannel{err: amqp091.ErrClosed}
	fresh := &fakeChannel{}
	p, dials := newTestPublisher(t, broken, fresh)

	require.NoError(t, p.PublishRecordCreated(context.Background(), testEvent))
	assert.Equal(t, 2, *dials)
	assert.True(t, broken.closed)
	assert.Len(t, fresh.published, 1)
}

func TestPublisher_NonConnectionErrorIsNotRetried(t *testing.T) {
	ch := &fakeChannel{err: errors.New("NOT_FOUND - no exchange 'pft'")}
	p, dials := newTestPublisher(t, ch)

	err := p.PublishRecordCreated(context.Background(), testEvent)
	require.Error(t, err)
	assert.Equal(t, 1, *dials)
}

func TestPublisher_GivesUp(t *testing.T) {
	p, _ := newTestPublisher(t, &fakeChannel{err: amqp091.ErrClosed})
	err := p.PublishRecordCreated(context.Background(), testEvent)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish message")
}

func TestPublisher_Close(t *testing.T) {
	ch := &fakeChannel{}
	p, _ := newTestPublisher(t, ch)
	require.NoError(t, p.Close())
	assert.True(t, ch.closed)

	err := p.PublishRecordCreated(context.Background(), testEvent)
	require.Error(t, err, "closed publisher cannot reconnect in this test")
}

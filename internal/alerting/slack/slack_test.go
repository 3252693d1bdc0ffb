package slack

import (
	"context"
	"sync"
	"testing"
	"time"

	slackapi "github.com/slack-go/slack"

	"github.com/zulandar/mqsentinel/internal/alerting"
)

type mockClient struct {
	mu       sync.Mutex
	authErr  error
	postErr  error
	failures int // number of leading PostMessage calls that rate-limit
	posted   []postedMessage
}

type postedMessage struct {
	channelID string
	options   []slackapi.MsgOption
}

func (m *mockClient) AuthTest() (*slackapi.AuthTestResponse, error) {
	if m.authErr != nil {
		return nil, m.authErr
	}
	return &slackapi.AuthTestResponse{UserID: "U123"}, nil
}

func (m *mockClient) PostMessage(channelID string, options ...slackapi.MsgOption) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures > 0 {
		m.failures--
		return "", "", &slackapi.RateLimitedError{RetryAfter: time.Millisecond}
	}
	if m.postErr != nil {
		return "", "", m.postErr
	}
	m.posted = append(m.posted, postedMessage{channelID: channelID, options: options})
	return channelID, "123.456", nil
}

func (m *mockClient) postCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.posted)
}

func newTestAdapter(t *testing.T, client *mockClient) *Adapter {
	t.Helper()
	a, err := New(AdapterOpts{ChannelID: "C999", Client: client})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := a.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	return a
}

func TestNewRequiresToken(t *testing.T) {
	if _, err := New(AdapterOpts{ChannelID: "C999"}); err == nil {
		t.Fatal("New accepted empty bot token without injected client")
	}
}

func TestNewRequiresChannel(t *testing.T) {
	if _, err := New(AdapterOpts{BotToken: "xoxb-test"}); err == nil {
		t.Fatal("New accepted empty channel ID")
	}
}

func TestSendPostsToChannel(t *testing.T) {
	client := &mockClient{}
	a := newTestAdapter(t, client)

	err := a.Send(context.Background(), alerting.Event{
		Title: "Queue DEV.Q1 is full",
		Body:  "depth 5000 of 5000",
		Color: alerting.ColorError,
		Fields: []alerting.Field{
			{Name: "Object", Value: "DEV.Q1", Short: true},
		},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if client.postCount() != 1 {
		t.Fatalf("posted %d messages, want 1", client.postCount())
	}
	if client.posted[0].channelID != "C999" {
		t.Fatalf("posted to %q, want C999", client.posted[0].channelID)
	}
}

func TestSendRequiresConnect(t *testing.T) {
	a, err := New(AdapterOpts{ChannelID: "C999", Client: &mockClient{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := a.Send(context.Background(), alerting.Event{Title: "x"}); err == nil {
		t.Fatal("Send succeeded before Connect")
	}
}

func TestSendRetriesOnRateLimit(t *testing.T) {
	client := &mockClient{failures: 2}
	a := newTestAdapter(t, client)

	if err := a.Send(context.Background(), alerting.Event{Title: "x"}); err != nil {
		t.Fatalf("Send with transient rate limits: %v", err)
	}
	if client.postCount() != 1 {
		t.Fatalf("posted %d messages after retries, want 1", client.postCount())
	}
}

func TestSendGivesUpAfterMaxRetries(t *testing.T) {
	client := &mockClient{failures: maxRetries + 1}
	a := newTestAdapter(t, client)

	if err := a.Send(context.Background(), alerting.Event{Title: "x"}); err == nil {
		t.Fatal("Send succeeded despite persistent rate limiting")
	}
}

func TestCloseRejectsFurtherConnects(t *testing.T) {
	a := newTestAdapter(t, &mockClient{})
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := a.Connect(context.Background()); err == nil {
		t.Fatal("Connect succeeded on a closed adapter")
	}
}

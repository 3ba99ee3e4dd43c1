package slack

import (
	"context"
	"errors"
	"testing"

	"github.com/beaconsafe/beacon/internal/notifier"
	slackapi "github.com/slack-go/slack"
)

// mockClient records Slack API calls.
type mockClient struct {
	authErr  error
	postErr  error
	authed   int
	channels []string
	options  [][]slackapi.MsgOption
}

func (m *mockClient) AuthTest() (*slackapi.AuthTestResponse, error) {
	m.authed++
	if m.authErr != nil {
		return nil, m.authErr
	}
	return &slackapi.AuthTestResponse{User: "beacon"}, nil
}

func (m *mockClient) PostMessage(channelID string, options ...slackapi.MsgOption) (string, string, error) {
	m.channels = append(m.channels, channelID)
	m.options = append(m.options, options)
	if m.postErr != nil {
		return "", "", m.postErr
	}
	return channelID, "1234.5678", nil
}

func newTestAdapter(t *testing.T, client *mockClient) *Adapter {
	t.Helper()
	a, err := New(AdapterOpts{ChannelID: "C0FFEE", Client: client})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(AdapterOpts{ChannelID: "C0FFEE"}); err == nil {
		t.Error("expected error for missing bot token")
	}
	if _, err := New(AdapterOpts{BotToken: "xoxb-test"}); err == nil {
		t.Error("expected error for missing channel ID")
	}
}

func TestConnect_RunsAuthTestOnce(t *testing.T) {
	client := &mockClient{}
	a := newTestAdapter(t, client)

	if err := a.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := a.Connect(context.Background()); err != nil {
		t.Fatalf("second Connect: %v", err)
	}
	if client.authed != 1 {
		t.Errorf("auth tests = %d, want 1", client.authed)
	}
}

func TestConnect_AuthFailure(t *testing.T) {
	client := &mockClient{authErr: errors.New("invalid_auth")}
	a := newTestAdapter(t, client)

	if err := a.Connect(context.Background()); err == nil {
		t.Fatal("expected auth error")
	}
}

func TestSend_PostsToConfiguredChannel(t *testing.T) {
	client := &mockClient{}
	a := newTestAdapter(t, client)
	if err := a.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	err := a.Send(context.Background(), notifier.Event{
		Title:    "SOS dispatch sent",
		Body:     "need help",
		Severity: "warning",
		Color:    notifier.ColorWarning,
		Fields:   []notifier.Field{{Name: "SMS", Value: "yes", Short: true}},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(client.channels) != 1 || client.channels[0] != "C0FFEE" {
		t.Errorf("posted to %v, want [C0FFEE]", client.channels)
	}
}

func TestSend_RequiresConnect(t *testing.T) {
	a := newTestAdapter(t, &mockClient{})
	if err := a.Send(context.Background(), notifier.Event{Title: "x"}); err == nil {
		t.Fatal("expected error before Connect")
	}
}

func TestSend_PostFailure(t *testing.T) {
	client := &mockClient{postErr: errors.New("channel_not_found")}
	a := newTestAdapter(t, client)
	if err := a.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := a.Send(context.Background(), notifier.Event{Title: "x"}); err == nil {
		t.Fatal("expected post error")
	}
}

func TestClose_BlocksFurtherUse(t *testing.T) {
	a := newTestAdapter(t, &mockClient{})
	if err := a.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := a.Connect(context.Background()); err == nil {
		t.Error("expected error connecting a closed adapter")
	}
	if err := a.Send(context.Background(), notifier.Event{Title: "x"}); err == nil {
		t.Error("expected error sending on a closed adapter")
	}
}

package discord

import (
	"context"
	"errors"
	"testing"

	"github.com/beaconsafe/beacon/internal/notifier"
	"github.com/bwmarrin/discordgo"
)

// mockSession records gateway calls.
type mockSession struct {
	openErr error
	sendErr error
	opened  int
	closed  int
	embeds  []*discordgo.MessageEmbed
	channel string
}

func (m *mockSession) Open() error {
	m.opened++
	return m.openErr
}

func (m *mockSession) Close() error {
	m.closed++
	return nil
}

func (m *mockSession) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.channel = channelID
	m.embeds = append(m.embeds, embed)
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	return &discordgo.Message{}, nil
}

func newTestAdapter(t *testing.T, sess *mockSession) *Adapter {
	t.Helper()
	a, err := New(AdapterOpts{ChannelID: "123456", Session: sess})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(AdapterOpts{ChannelID: "123456"}); err == nil {
		t.Error("expected error for missing bot token")
	}
	if _, err := New(AdapterOpts{BotToken: "token"}); err == nil {
		t.Error("expected error for missing channel ID")
	}
}

func TestConnect_OpensSessionOnce(t *testing.T) {
	sess := &mockSession{}
	a := newTestAdapter(t, sess)

	if err := a.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := a.Connect(context.Background()); err != nil {
		t.Fatalf("second Connect: %v", err)
	}
	if sess.opened != 1 {
		t.Errorf("opens = %d, want 1", sess.opened)
	}
}

func TestConnect_OpenFailure(t *testing.T) {
	sess := &mockSession{openErr: errors.New("gateway unreachable")}
	a := newTestAdapter(t, sess)
	if err := a.Connect(context.Background()); err == nil {
		t.Fatal("expected open error")
	}
}

func TestSend_PostsEmbed(t *testing.T) {
	sess := &mockSession{}
	a := newTestAdapter(t, sess)
	if err := a.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	err := a.Send(context.Background(), notifier.Event{
		Title:    "SOS dispatch sent",
		Body:     "need help",
		Color:    "#ff9800",
		Fields:   []notifier.Field{{Name: "SMS", Value: "yes", Short: true}},
		Severity: "warning",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if sess.channel != "123456" {
		t.Errorf("channel = %q, want %q", sess.channel, "123456")
	}
	if len(sess.embeds) != 1 {
		t.Fatalf("embeds = %d, want 1", len(sess.embeds))
	}
	embed := sess.embeds[0]
	if embed.Title != "SOS dispatch sent" || embed.Description != "need help" {
		t.Errorf("embed = %+v", embed)
	}
	if embed.Color != 0xff9800 {
		t.Errorf("Color = %#x, want %#x", embed.Color, 0xff9800)
	}
	if len(embed.Fields) != 1 || !embed.Fields[0].Inline {
		t.Errorf("Fields = %+v, want one inline field", embed.Fields)
	}
}

func TestSend_RequiresConnect(t *testing.T) {
	a := newTestAdapter(t, &mockSession{})
	if err := a.Send(context.Background(), notifier.Event{Title: "x"}); err == nil {
		t.Fatal("expected error before Connect")
	}
}

func TestClose_ClosesSession(t *testing.T) {
	sess := &mockSession{}
	a := newTestAdapter(t, sess)
	if err := a.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if sess.closed != 1 {
		t.Errorf("closes = %d, want 1", sess.closed)
	}
	// Second close is a no-op.
	if err := a.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if sess.closed != 1 {
		t.Errorf("closes after second Close = %d, want 1", sess.closed)
	}
}

func TestHexColor(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"#36a64f", 0x36a64f},
		{"2196f3", 0x2196f3},
		{"", 0},
		{"not-a-color", 0},
	}
	for _, tc := range cases {
		if got := hexColor(tc.in); got != tc.want {
			t.Errorf("hexColor(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

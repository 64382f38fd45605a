package notify

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stellarlinkco/linkclaw/internal/capture"
	"github.com/stellarlinkco/linkclaw/internal/config"
	"github.com/stellarlinkco/linkclaw/internal/pipeline"
)

// mockTelegramBot implements TelegramBot for testing
type mockTelegramBot struct {
	sentMsgs  []tgbotapi.Chattable
	sendErr   error
	failFirst bool
	calls     int
	self      tgbotapi.User
}

func newMockBot() *mockTelegramBot {
	return &mockTelegramBot{self: tgbotapi.User{UserName: "testbot"}}
}

func (m *mockTelegramBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.calls++
	m.sentMsgs = append(m.sentMsgs, c)
	if m.failFirst && m.calls == 1 {
		return tgbotapi.Message{}, fmt.Errorf("HTML parse error")
	}
	if m.sendErr != nil {
		return tgbotapi.Message{}, m.sendErr
	}
	return tgbotapi.Message{MessageID: 1}, nil
}

func (m *mockTelegramBot) GetSelf() tgbotapi.User {
	return m.self
}

func sentText(t *testing.T, c tgbotapi.Chattable) tgbotapi.MessageConfig {
	t.Helper()
	mc, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("sent message is %T, want tgbotapi.MessageConfig", c)
	}
	return mc
}

func okResult() pipeline.Result {
	return pipeline.Result{
		URL:        "https://x.com/alice/status/1",
		Status:     pipeline.StatusOK,
		Kind:       capture.SourceTweet,
		Title:      "[@alice] big agent news today",
		Summary:    "[@alice] big agent news today (2024-03-01, 10 likes)",
		Labels:     []string{"source-tweet", "agents"},
		Importance: 0.8,
		Dedup:      &pipeline.Dedup{Exists: false},
		StoredID:   "abc123",
	}
}

func TestNewNotifier_NoToken(t *testing.T) {
	_, err := NewNotifier(config.TelegramConfig{ChatID: 42})
	if err == nil {
		t.Error("expected error for empty token")
	}
}

func TestNewNotifier_NoChatID(t *testing.T) {
	_, err := NewNotifier(config.TelegramConfig{Token: "fake-token"})
	if err == nil {
		t.Error("expected error for zero chat id")
	}
}

func TestNotify_Success(t *testing.T) {
	mockBot := newMockBot()
	n, err := NewNotifier(config.TelegramConfig{Token: "fake-token", ChatID: 42})
	if err != nil {
		t.Fatalf("NewNotifier error: %v", err)
	}
	n.SetBot(mockBot)

	if err := n.Notify([]pipeline.Result{okResult()}); err != nil {
		t.Fatalf("Notify error: %v", err)
	}
	if len(mockBot.sentMsgs) != 1 {
		t.Fatalf("sent %d messages, want 1", len(mockBot.sentMsgs))
	}

	mc := sentText(t, mockBot.sentMsgs[0])
	if mc.ChatID != 42 {
		t.Errorf("chat id = %d, want 42", mc.ChatID)
	}
	if mc.ParseMode != tgbotapi.ModeHTML {
		t.Errorf("parse mode = %q, want HTML", mc.ParseMode)
	}
	for _, want := range []string{
		"<b>[@alice] big agent news today</b>",
		"tweet | importance 0.80",
		"labels: source-tweet, agents",
		"https://x.com/alice/status/1",
	} {
		if !strings.Contains(mc.Text, want) {
			t.Errorf("message missing %q:\n%s", want, mc.Text)
		}
	}
	if strings.Contains(mc.Text, "already captured") {
		t.Errorf("fresh capture should not carry duplicate note:\n%s", mc.Text)
	}
}

func TestNotify_DuplicateNote(t *testing.T) {
	mockBot := newMockBot()
	n, _ := NewNotifier(config.TelegramConfig{Token: "fake-token", ChatID: 42})
	n.SetBot(mockBot)

	res := okResult()
	res.Dedup = &pipeline.Dedup{Exists: true}

	if err := n.Notify([]pipeline.Result{res}); err != nil {
		t.Fatalf("Notify error: %v", err)
	}
	mc := sentText(t, mockBot.sentMsgs[0])
	if !strings.Contains(mc.Text, "already captured") {
		t.Errorf("expected duplicate note:\n%s", mc.Text)
	}
}

func TestNotify_ErrorResult(t *testing.T) {
	mockBot := newMockBot()
	n, _ := NewNotifier(config.TelegramConfig{Token: "fake-token", ChatID: 42})
	n.SetBot(mockBot)

	res := pipeline.Result{
		URL:    "https://x.com/alice/status/2",
		Status: pipeline.StatusError,
		Kind:   capture.SourceTweet,
		Error:  "fetch: api down",
	}

	if err := n.Notify([]pipeline.Result{res}); err != nil {
		t.Fatalf("Notify error: %v", err)
	}
	mc := sentText(t, mockBot.sentMsgs[0])
	if !strings.Contains(mc.Text, "capture failed") {
		t.Errorf("expected failure header:\n%s", mc.Text)
	}
	if !strings.Contains(mc.Text, "fetch: api down") {
		t.Errorf("expected error detail:\n%s", mc.Text)
	}
}

func TestNotify_EscapesHTML(t *testing.T) {
	mockBot := newMockBot()
	n, _ := NewNotifier(config.TelegramConfig{Token: "fake-token", ChatID: 42})
	n.SetBot(mockBot)

	res := okResult()
	res.Title = "<script> & co"
	res.Summary = ""

	if err := n.Notify([]pipeline.Result{res}); err != nil {
		t.Fatalf("Notify error: %v", err)
	}
	mc := sentText(t, mockBot.sentMsgs[0])
	if !strings.Contains(mc.Text, "<b>&lt;script&gt; &amp; co</b>") {
		t.Errorf("title not escaped:\n%s", mc.Text)
	}
}

func TestNotify_MultipleResults(t *testing.T) {
	mockBot := newMockBot()
	n, _ := NewNotifier(config.TelegramConfig{Token: "fake-token", ChatID: 42})
	n.SetBot(mockBot)

	if err := n.Notify([]pipeline.Result{okResult(), okResult()}); err != nil {
		t.Fatalf("Notify error: %v", err)
	}
	if len(mockBot.sentMsgs) != 2 {
		t.Errorf("sent %d messages, want 2", len(mockBot.sentMsgs))
	}
}

func TestNotify_LongMessageSplits(t *testing.T) {
	mockBot := newMockBot()
	n, _ := NewNotifier(config.TelegramConfig{Token: "fake-token", ChatID: 42})
	n.SetBot(mockBot)

	res := okResult()
	res.Title = strings.Repeat("x", 5000)

	if err := n.Notify([]pipeline.Result{res}); err != nil {
		t.Fatalf("Notify error: %v", err)
	}
	if len(mockBot.sentMsgs) < 2 {
		t.Errorf("expected multiple messages for long content, got %d", len(mockBot.sentMsgs))
	}
}

func TestNotify_HTMLError_RetryPlain(t *testing.T) {
	mockBot := newMockBot()
	mockBot.failFirst = true
	n, _ := NewNotifier(config.TelegramConfig{Token: "fake-token", ChatID: 42})
	n.SetBot(mockBot)

	if err := n.Notify([]pipeline.Result{okResult()}); err != nil {
		t.Errorf("Notify should succeed after retry: %v", err)
	}
	if len(mockBot.sentMsgs) != 2 {
		t.Fatalf("sent %d messages, want 2 (HTML then plain)", len(mockBot.sentMsgs))
	}
	retry := sentText(t, mockBot.sentMsgs[1])
	if retry.ParseMode != "" {
		t.Errorf("retry parse mode = %q, want empty", retry.ParseMode)
	}
}

func TestNotify_BothSendsFail(t *testing.T) {
	mockBot := newMockBot()
	mockBot.sendErr = fmt.Errorf("send failed")
	n, _ := NewNotifier(config.TelegramConfig{Token: "fake-token", ChatID: 42})
	n.SetBot(mockBot)

	err := n.Notify([]pipeline.Result{okResult()})
	if err == nil {
		t.Error("expected error when both sends fail")
	}
}

func TestNotify_FactoryError(t *testing.T) {
	factory := func(token string, client *http.Client) (TelegramBot, error) {
		return nil, fmt.Errorf("auth failed")
	}
	n, err := NewNotifierWithFactory(config.TelegramConfig{Token: "fake-token", ChatID: 42}, factory)
	if err != nil {
		t.Fatalf("NewNotifierWithFactory error: %v", err)
	}

	err = n.Notify([]pipeline.Result{okResult()})
	if err == nil {
		t.Error("expected error from bot factory")
	}
	if !strings.Contains(err.Error(), "create telegram bot") {
		t.Errorf("error = %v, want create telegram bot", err)
	}
}

func TestNotify_LazyInitOnce(t *testing.T) {
	mockBot := newMockBot()
	created := 0
	factory := func(token string, client *http.Client) (TelegramBot, error) {
		created++
		return mockBot, nil
	}
	n, _ := NewNotifierWithFactory(config.TelegramConfig{Token: "fake-token", ChatID: 42}, factory)

	if err := n.Notify([]pipeline.Result{okResult()}); err != nil {
		t.Fatalf("Notify error: %v", err)
	}
	if err := n.Notify([]pipeline.Result{okResult()}); err != nil {
		t.Fatalf("Notify error: %v", err)
	}
	if created != 1 {
		t.Errorf("bot created %d times, want 1", created)
	}
}

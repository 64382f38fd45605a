// Package notify pushes capture results to a Telegram chat.
package notify

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stellarlinkco/linkclaw/internal/config"
	"github.com/stellarlinkco/linkclaw/internal/pipeline"
)

// TelegramBot is the slice of the bot API the notifier uses.
type TelegramBot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetSelf() tgbotapi.User
}

// tgBotWrapper wraps tgbotapi.BotAPI to implement TelegramBot.
type tgBotWrapper struct {
	bot *tgbotapi.BotAPI
}

func (w *tgBotWrapper) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	return w.bot.Send(c)
}

func (w *tgBotWrapper) GetSelf() tgbotapi.User {
	return w.bot.Self
}

// BotFactory creates TelegramBot instances (allows mocking).
type BotFactory func(token string, client *http.Client) (TelegramBot, error)

var defaultBotFactory BotFactory = func(token string, client *http.Client) (TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, err
	}
	return &tgBotWrapper{bot: bot}, nil
}

// Notifier sends capture results to a single Telegram chat.
type Notifier struct {
	token      string
	chatID     int64
	bot        TelegramBot
	botFactory BotFactory
}

func NewNotifier(cfg config.TelegramConfig) (*Notifier, error) {
	return NewNotifierWithFactory(cfg, defaultBotFactory)
}

// NewNotifierWithFactory creates a Notifier with a custom bot factory (for testing).
func NewNotifierWithFactory(cfg config.TelegramConfig, factory BotFactory) (*Notifier, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram token is required")
	}
	if cfg.ChatID == 0 {
		return nil, fmt.Errorf("telegram chat id is required")
	}
	return &Notifier{
		token:      cfg.Token,
		chatID:     cfg.ChatID,
		botFactory: factory,
	}, nil
}

// initBot authorizes against the Telegram API on first use.
func (n *Notifier) initBot() error {
	if n.bot != nil {
		return nil
	}
	bot, err := n.botFactory(n.token, http.DefaultClient)
	if err != nil {
		return fmt.Errorf("create telegram bot: %w", err)
	}
	n.bot = bot
	log.Printf("[notify] authorized as @%s", bot.GetSelf().UserName)
	return nil
}

// SetBot sets the bot (for testing).
func (n *Notifier) SetBot(bot TelegramBot) {
	n.bot = bot
}

// Notify sends one message per result, error results included.
func (n *Notifier) Notify(results []pipeline.Result) error {
	if err := n.initBot(); err != nil {
		return err
	}
	for _, res := range results {
		if err := n.send(formatResult(res)); err != nil {
			return err
		}
	}
	log.Printf("[notify] sent %d result(s) to chat %d", len(results), n.chatID)
	return nil
}

func (n *Notifier) send(content string) error {
	// Telegram has a 4096 char limit per message
	const maxLen = 4000
	for len(content) > 0 {
		chunk := content
		if len(chunk) > maxLen {
			// Try to split at last newline before maxLen
			idx := strings.LastIndex(chunk[:maxLen], "\n")
			if idx > 0 {
				chunk = chunk[:idx]
			} else {
				chunk = chunk[:maxLen]
			}
		}
		content = content[len(chunk):]

		msg := tgbotapi.NewMessage(n.chatID, chunk)
		msg.ParseMode = tgbotapi.ModeHTML
		if _, err := n.bot.Send(msg); err != nil {
			// Retry without HTML parse mode
			msg.ParseMode = ""
			if _, err2 := n.bot.Send(msg); err2 != nil {
				return fmt.Errorf("send telegram message: %w", err2)
			}
		}
	}
	return nil
}

// formatResult renders a result as Telegram HTML.
func formatResult(res pipeline.Result) string {
	if res.Status != pipeline.StatusOK {
		return fmt.Sprintf("capture failed\n%s\n%s", escapeHTML(res.URL), escapeHTML(res.Error))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n", escapeHTML(res.Title))
	if res.Summary != "" {
		b.WriteString(escapeHTML(res.Summary))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s | importance %.2f\n", res.Kind, res.Importance)
	if len(res.Labels) > 0 {
		fmt.Fprintf(&b, "labels: %s\n", strings.Join(res.Labels, ", "))
	}
	if res.Dedup != nil && res.Dedup.Exists {
		b.WriteString("already captured\n")
	}
	b.WriteString(escapeHTML(res.URL))
	return b.String()
}

func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

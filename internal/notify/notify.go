// Package notify delivers a rendered report over the configured channels.
// Channels are independent: an unconfigured or failing channel never blocks
// the other, and failures degrade to a false flag rather than an error.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/PoetryWindy/github-stats-bot/internal/config"
)

// Result reports the per-channel delivery outcome of one SendAll call.
type Result struct {
	Email  bool `json:"email"`
	OneBot bool `json:"onebot"`
}

// Delivered reports whether at least one channel accepted the report.
func (r Result) Delivered() bool {
	return r.Email || r.OneBot
}

// Notifier sends reports by email and OneBot webhook.
type Notifier struct {
	email  *config.EmailConfig
	onebot *config.OneBotConfig

	// settingsRecipients is the last-resort recipient list from the
	// settings document.
	settingsRecipients []string

	client   *http.Client
	logger   *log.Logger
	sendMail func(cfg *config.EmailConfig, msg *gomail.Message) error
}

// NewNotifier builds a Notifier from the startup environment and the
// settings document's recipient list.
func NewNotifier(env *config.Env, settingsRecipients []string, logger *log.Logger) *Notifier {
	return &Notifier{
		email:              env.Email,
		onebot:             env.OneBot,
		settingsRecipients: settingsRecipients,
		client:             &http.Client{Timeout: 30 * time.Second},
		logger:             logger,
		sendMail:           dialAndSend,
	}
}

func dialAndSend(cfg *config.EmailConfig, msg *gomail.Message) error {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	// STARTTLS is negotiated automatically on plain connections; implicit
	// TLS only applies on the SMTPS port.
	d.SSL = cfg.UseTLS && cfg.Port == 465
	return d.DialAndSend(msg)
}

// SendAll delivers the report over every configured channel and returns the
// per-channel outcome. recipients overrides the email recipient resolution
// when non-empty.
func (n *Notifier) SendAll(subject, content string, recipients []string) Result {
	var res Result
	if n.email != nil {
		res.Email = n.sendEmail(subject, content, recipients)
	} else {
		n.logger.Println("email channel not configured, skipping")
	}
	if n.onebot != nil {
		res.OneBot = n.sendOneBot(content)
	} else {
		n.logger.Println("onebot channel not configured, skipping")
	}
	return res
}

// resolveRecipients picks the email recipients in priority order: explicit
// argument, EMAIL_RECIPIENT from the environment, settings document list.
func (n *Notifier) resolveRecipients(recipients []string) []string {
	if len(recipients) > 0 {
		return recipients
	}
	if n.email.Recipient != "" {
		return []string{n.email.Recipient}
	}
	return n.settingsRecipients
}

func (n *Notifier) sendEmail(subject, content string, recipients []string) bool {
	recipients = n.resolveRecipients(recipients)
	if len(recipients) == 0 {
		n.logger.Println("no email recipients resolved")
		return false
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", n.email.User)
	msg.SetHeader("To", recipients...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", content)

	if err := n.sendMail(n.email, msg); err != nil {
		n.logger.Printf("failed to send email: %v", err)
		return false
	}
	n.logger.Printf("email sent to %s", strings.Join(recipients, ", "))
	return true
}

// oneBotMessage is the private-message payload of the OneBot HTTP API.
type oneBotMessage struct {
	UserID  int64  `json:"user_id"`
	Message string `json:"message"`
}

type oneBotResponse struct {
	Status string `json:"status"`
	Msg    string `json:"msg"`
}

func (n *Notifier) sendOneBot(content string) bool {
	// Expand literal \n sequences so multi-line reports survive transports
	// that escape newlines.
	payload := oneBotMessage{
		UserID:  n.onebot.UserID,
		Message: strings.ReplaceAll(content, `\n`, "\n"),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		n.logger.Printf("failed to encode onebot payload: %v", err)
		return false
	}

	resp, err := n.client.Post(n.onebot.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		n.logger.Printf("failed to post onebot message: %v", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		n.logger.Printf("onebot request failed with status %d", resp.StatusCode)
		return false
	}
	var obr oneBotResponse
	if err := json.NewDecoder(resp.Body).Decode(&obr); err != nil {
		n.logger.Printf("failed to decode onebot response: %v", err)
		return false
	}
	if obr.Status != "ok" {
		n.logger.Printf("onebot rejected message: %s", firstNonEmpty(obr.Msg, "unknown error"))
		return false
	}
	n.logger.Printf("onebot message sent to %d", n.onebot.UserID)
	return true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Subject builds the email subject line for a report kind.
func Subject(kind string) string {
	return fmt.Sprintf("GitHub %s%s Report", strings.ToUpper(kind[:1]), kind[1:])
}

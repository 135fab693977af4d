// Package notify tells administrators about newly submitted manual requests.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/tebiki/internal/models"
	"github.com/starford/tebiki/internal/sse"
)

// Notifier is told about every accepted manual request.
type Notifier interface {
	RequestSubmitted(ctx context.Context, r *models.ManualRequest) error
}

// Message is a rendered notification.
type Message struct {
	To      string
	Subject string
	Body    string
}

const blank = "未記入"

func orBlank(s string) string {
	if strings.TrimSpace(s) == "" {
		return blank
	}
	return s
}

// Render builds the mail sent to adminEmail for r.
func Render(r *models.ManualRequest, adminEmail string) Message {
	return Message{
		To:      adminEmail,
		Subject: "新しいマニュアルリクエスト: " + r.ManualTitle,
		Body:    MailBody(r),
	}
}

// MailBody renders the plain-text body of a request notification.
func MailBody(r *models.ManualRequest) string {
	var b strings.Builder
	b.WriteString("新しいマニュアルリクエストが届きました。\n\n")

	b.WriteString("【リクエスト情報】\n")
	fmt.Fprintf(&b, "リクエスト者: %s\n", r.RequesterName)
	fmt.Fprintf(&b, "メールアドレス: %s\n", r.RequesterEmail)
	fmt.Fprintf(&b, "部署: %s\n", orBlank(r.Department))
	fmt.Fprintf(&b, "緊急度: %s\n\n", r.Urgency.Label())

	b.WriteString("【リクエスト内容】\n")
	fmt.Fprintf(&b, "タイトル: %s\n", r.ManualTitle)
	fmt.Fprintf(&b, "説明: %s\n\n", r.ManualDescription)

	b.WriteString("【詳細情報】\n")
	fmt.Fprintf(&b, "使用目的: %s\n", orBlank(r.UseCase))
	fmt.Fprintf(&b, "想定利用者: %s\n", orBlank(r.ExpectedUsers))
	fmt.Fprintf(&b, "備考: %s\n\n", orBlank(r.AdditionalNotes))

	b.WriteString("管理画面でリクエストの詳細を確認し、対応を行ってください。")
	return b.String()
}

// LogNotifier writes the rendered mail to the log. It stands in for a mail
// transport.
type LogNotifier struct {
	Logger     *slog.Logger
	AdminEmail string
}

func (n *LogNotifier) RequestSubmitted(_ context.Context, r *models.ManualRequest) error {
	msg := Render(r, n.AdminEmail)
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("manual request notification",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("request_id", r.ID),
		slog.String("body", msg.Body),
	)
	return nil
}

// Publisher is the subset of the SSE broker used for fan-out.
type Publisher interface {
	PublishChange(resource, kind string, c sse.Change)
}

// BrokerNotifier pushes request.created to connected admin dashboards.
type BrokerNotifier struct {
	Broker Publisher
}

func (n *BrokerNotifier) RequestSubmitted(_ context.Context, r *models.ManualRequest) error {
	if n.Broker == nil {
		return nil
	}
	n.Broker.PublishChange(sse.ResourceRequest, sse.KindCreated, sse.Change{ID: r.ID})
	return nil
}

// Multi fans a notification out to every notifier, joining their errors.
type Multi []Notifier

func (m Multi) RequestSubmitted(ctx context.Context, r *models.ManualRequest) error {
	var errs []error
	for _, n := range m {
		if err := n.RequestSubmitted(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ Notifier = (*LogNotifier)(nil)
	_ Notifier = (*BrokerNotifier)(nil)
	_ Notifier = Multi(nil)
)

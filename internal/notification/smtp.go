package notification

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"text/template"

	"github.com/ichiba-dev/ichiba-backend/internal/config"
)

const confirmationTemplate = `{{.DisplayName}} 様

ご注文ありがとうございます。注文番号 #{{.OrderID}} のお支払いを確認しました。

ご注文内容:
{{range .Lines}}  {{.Name}} x{{.Quantity}}  ¥{{.Price}}
{{end}}
合計: ¥{{.TotalAmount}}

お届け先:
{{.ShipTo}}
`

// SMTPSender delivers mail over plain SMTP. Template parsing happens once at
// construction so send-time failures are delivery failures only.
type SMTPSender struct {
	addr     string
	from     string
	template *template.Template
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(cfg *config.Email) *SMTPSender {
	return &SMTPSender{
		addr:     cfg.SMTPHost + ":" + cfg.SMTPPort,
		from:     cfg.From,
		template: template.Must(template.New("order_confirmation").Parse(confirmationTemplate)),
		sendMail: smtp.SendMail,
	}
}

var _ Sender = (*SMTPSender)(nil)

func (s *SMTPSender) SendOrderConfirmation(ctx context.Context, confirmation OrderConfirmation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	fmt.Fprintf(&body, "From: %s\r\n", s.from)
	fmt.Fprintf(&body, "To: %s\r\n", confirmation.To)
	fmt.Fprintf(&body, "Subject: =?UTF-8?B?%s?=\r\n", encodeSubject(fmt.Sprintf("ご注文確認 #%d", confirmation.OrderID)))
	body.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n")

	if err := s.template.Execute(&body, confirmation); err != nil {
		return fmt.Errorf("render confirmation: %w", err)
	}

	if err := s.sendMail(s.addr, nil, s.from, []string{confirmation.To}, body.Bytes()); err != nil {
		return fmt.Errorf("send confirmation for order %d: %w", confirmation.OrderID, err)
	}
	return nil
}

func encodeSubject(subject string) string {
	return base64.StdEncoding.EncodeToString([]byte(subject))
}

package notification

import (
	"context"
	"net/smtp"
	"strings"
	"testing"

	"github.com/ichiba-dev/ichiba-backend/internal/config"
)

func TestSendOrderConfirmationRendersTemplate(t *testing.T) {
	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotMsg  string
	)
	sender := NewSMTPSender(&config.Email{SMTPHost: "mail.test", SMTPPort: "587", From: "noreply@shop.test"})
	sender.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, string(msg)
		return nil
	}

	err := sender.SendOrderConfirmation(context.Background(), OrderConfirmation{
		To:          "taro@example.com",
		DisplayName: "Taro",
		OrderID:     42,
		Lines: []OrderLine{
			{Name: "Dorayaki Set", Quantity: 2, Price: 1000},
			{Name: "Green Tea", Quantity: 1, Price: 2500},
		},
		TotalAmount: 4500,
		ShipTo:      "100-0001 東京都千代田区1-1-1 Taro Yamada",
	})
	if err != nil {
		t.Fatalf("SendOrderConfirmation: %v", err)
	}

	if gotAddr != "mail.test:587" {
		t.Errorf("addr = %q", gotAddr)
	}
	if gotFrom != "noreply@shop.test" || len(gotTo) != 1 || gotTo[0] != "taro@example.com" {
		t.Errorf("from = %q, to = %v", gotFrom, gotTo)
	}
	for _, want := range []string{"#42", "Dorayaki Set x2", "¥1000", "合計: ¥4500", "東京都千代田区"} {
		if !strings.Contains(gotMsg, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestSendOrderConfirmationHonorsContext(t *testing.T) {
	sender := NewSMTPSender(&config.Email{SMTPHost: "mail.test", SMTPPort: "587", From: "noreply@shop.test"})
	sender.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("sendMail should not run with cancelled context")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sender.SendOrderConfirmation(ctx, OrderConfirmation{To: "taro@example.com"}); err == nil {
		t.Fatal("expected context error")
	}
}

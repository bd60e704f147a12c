package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vibast-solutions/ms-go-purchases/config"
)

func TestSendBuyerReceiptSuccess(t *testing.T) {
	var gotPath string
	var gotAPIKey string
	var gotReceipt BuyerReceipt
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("X-API-Key")
		_ = json.NewDecoder(r.Body).Decode(&gotReceipt)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := NewMailerClient(config.MailerConfig{BaseURL: server.URL, APIKey: "mailer-key"})
	err := client.SendBuyerReceipt(context.Background(), &BuyerReceipt{
		ContactEmail: "buyer@example.com",
		EventID:      "ev-1",
		PurchaseID:   7,
		PhotoCount:   3,
		GrossCents:   10000,
		Currency:     "USD",
	})
	if err != nil {
		t.Fatalf("send buyer receipt failed: %v", err)
	}
	if gotPath != "/emails/purchase-receipt" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotAPIKey != "mailer-key" {
		t.Fatalf("unexpected api key: %s", gotAPIKey)
	}
	if gotReceipt.PurchaseID != 7 || gotReceipt.PhotoCount != 3 {
		t.Fatalf("unexpected receipt payload: %+v", gotReceipt)
	}
}

func TestSendPayoutNoticeFailureStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewMailerClient(config.MailerConfig{BaseURL: server.URL})
	err := client.SendPayoutNotice(context.Background(), &PayoutNotice{PhotographerID: "ph-1", PurchaseID: 7})
	if err == nil {
		t.Fatal("expected error when mailer returns 500")
	}
}

func TestSendRequiresBaseURL(t *testing.T) {
	client := NewMailerClient(config.MailerConfig{})
	if err := client.SendBuyerReceipt(context.Background(), &BuyerReceipt{}); err == nil {
		t.Fatal("expected error when base url is missing")
	}
}

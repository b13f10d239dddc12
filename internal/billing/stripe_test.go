package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/setlistr/setlistr/internal/config"
	"github.com/setlistr/setlistr/internal/pkg/logger"
)

const testSecret = "whsec_test"

func newTestProvider() *StripeProvider {
	return NewStripeProvider(config.BillingConfig{
		StripeSecretKey:     "sk_test_x",
		StripeWebhookSecret: testSecret,
		StripePriceID:       "price_1",
	}, logger.Nop())
}

func sign(payload string) string {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testSecret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})
	return signed.Header
}

func TestParseWebhook_SubscriptionDeleted(t *testing.T) {
	p := newTestProvider()
	payload := `{"id":"evt_1","object":"event","type":"customer.subscription.deleted",
		"data":{"object":{"id":"sub_1","object":"subscription","customer":"cus_1","status":"canceled","current_period_end":1700000000}}}`

	ev, err := p.ParseWebhook(context.Background(), []byte(payload), sign(payload))
	if err != nil {
		t.Fatalf("ParseWebhook() error = %v", err)
	}
	if ev == nil || ev.Kind != EventSubscriptionCanceled {
		t.Fatalf("event = %+v, want canceled", ev)
	}
	if ev.CustomerID != "cus_1" || ev.Active {
		t.Errorf("event = %+v", ev)
	}
}

func TestParseWebhook_SubscriptionUpdated(t *testing.T) {
	p := newTestProvider()
	payload := `{"id":"evt_2","object":"event","type":"customer.subscription.updated",
		"data":{"object":{"id":"sub_1","object":"subscription","customer":"cus_9","status":"active","current_period_end":1700000000}}}`

	ev, err := p.ParseWebhook(context.Background(), []byte(payload), sign(payload))
	if err != nil {
		t.Fatalf("ParseWebhook() error = %v", err)
	}
	if ev.Kind != EventSubscriptionUpdated || !ev.Active || ev.CustomerID != "cus_9" {
		t.Fatalf("event = %+v", ev)
	}
	if ev.PeriodEnd == nil || ev.PeriodEnd.Unix() != 1700000000 {
		t.Errorf("PeriodEnd = %v", ev.PeriodEnd)
	}
}

func TestParseWebhook_CheckoutCompleted(t *testing.T) {
	p := newTestProvider()
	p.fetchSubscription = func(_ context.Context, id string) (*stripe.Subscription, error) {
		if id != "sub_7" {
			t.Errorf("fetched %q", id)
		}
		return &stripe.Subscription{ID: id, CurrentPeriodEnd: 1800000000}, nil
	}
	payload := `{"id":"evt_3","object":"event","type":"checkout.session.completed",
		"data":{"object":{"id":"cs_1","object":"checkout.session","client_reference_id":"42","customer":"cus_2","subscription":"sub_7"}}}`

	ev, err := p.ParseWebhook(context.Background(), []byte(payload), sign(payload))
	if err != nil {
		t.Fatalf("ParseWebhook() error = %v", err)
	}
	if ev.Kind != EventCheckoutCompleted || ev.UserID != 42 || ev.CustomerID != "cus_2" || !ev.Active {
		t.Fatalf("event = %+v", ev)
	}
	if ev.PeriodEnd == nil || ev.PeriodEnd.Unix() != 1800000000 {
		t.Errorf("PeriodEnd = %v", ev.PeriodEnd)
	}
}

func TestParseWebhook_IgnoredType(t *testing.T) {
	p := newTestProvider()
	payload := `{"id":"evt_4","object":"event","type":"invoice.paid","data":{"object":{"id":"in_1","object":"invoice"}}}`

	ev, err := p.ParseWebhook(context.Background(), []byte(payload), sign(payload))
	if err != nil || ev != nil {
		t.Fatalf("ParseWebhook() = %+v, %v; want nil, nil", ev, err)
	}
}

func TestParseWebhook_BadSignature(t *testing.T) {
	p := newTestProvider()
	payload := `{"id":"evt_5","object":"event","type":"customer.subscription.deleted","data":{"object":{}}}`

	_, err := p.ParseWebhook(context.Background(), []byte(payload), "t=1,v1=deadbeef")
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("error = %v, want ErrInvalidSignature", err)
	}
}

package notifications

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
	"github.com/angelmondragon/orderdesk-backend/pkg/outbox/payloads"
)

func strPtr(v string) *string { return &v }

func snapshot(phone *string) payloads.OrderSnapshot {
	return payloads.OrderSnapshot{
		OrderID:    uuid.New(),
		StoreID:    uuid.New(),
		Token:      "AbCdEfGh12345678ZzYyXxWw",
		Status:     enums.OrderStatusConfirmed,
		BuyerName:  strPtr("Ana"),
		BuyerPhone: phone,
		TotalCents: 25000,
		Currency:   "MXN",
	}
}

func TestRenderDecisionMessages(t *testing.T) {
	cases := []struct {
		outcome enums.DecisionOutcome
		want    string
	}{
		{enums.DecisionAcceptWithProof, "was confirmed"},
		{enums.DecisionAcceptCash, "250.00 MXN in cash"},
		{enums.DecisionReject, "was not accepted"},
	}
	for _, tc := range cases {
		notice, ok := Render(&payloads.OrderDecidedEvent{OrderSnapshot: snapshot(strPtr(" 5512345678 ")), Outcome: tc.outcome})
		if !ok {
			t.Fatalf("%s: expected notice", tc.outcome)
		}
		if notice.Audience != AudienceBuyer || notice.Recipient != "5512345678" {
			t.Fatalf("%s: unexpected recipient %+v", tc.outcome, notice)
		}
		if !strings.Contains(notice.Body, tc.want) || !strings.HasPrefix(notice.Body, "Hi Ana!") {
			t.Fatalf("%s: unexpected body %q", tc.outcome, notice.Body)
		}
		if !strings.Contains(notice.Body, "#AbCdEfGh") || strings.Contains(notice.Body, "12345678ZzYy") {
			t.Fatalf("%s: token should be shortened: %q", tc.outcome, notice.Body)
		}
	}
}

func TestRenderSkipsMissingPhone(t *testing.T) {
	if _, ok := Render(&payloads.OrderCreatedEvent{OrderSnapshot: snapshot(nil)}); ok {
		t.Fatalf("expected no notice without a phone")
	}
	if _, ok := Render(&payloads.StockRestockedEvent{}); ok {
		t.Fatalf("expected no notice for stock events")
	}
}

func TestRenderStaleReviewGoesToVendor(t *testing.T) {
	notice, ok := Render(&payloads.OrderReviewStaleEvent{
		OrderSnapshot: snapshot(strPtr("5512345678")),
		StoreName:     "Tienda",
		StorePhone:    strPtr("5599988877"),
		WaitingHours:  30,
	})
	if !ok {
		t.Fatalf("expected notice")
	}
	if notice.Audience != AudienceVendor || notice.Recipient != "5599988877" {
		t.Fatalf("unexpected recipient %+v", notice)
	}
	if !strings.Contains(notice.Body, "30 hours") {
		t.Fatalf("unexpected body %q", notice.Body)
	}

	if _, ok := Render(&payloads.OrderReviewStaleEvent{OrderSnapshot: snapshot(strPtr("5512345678"))}); ok {
		t.Fatalf("expected no notice without a store phone")
	}
}

func TestRenderFulfillment(t *testing.T) {
	order := snapshot(strPtr("5512345678"))
	order.Status = enums.OrderStatusShipped
	notice, ok := Render(&payloads.OrderFulfillmentUpdatedEvent{OrderSnapshot: order})
	if !ok || !strings.Contains(notice.Body, "on its way") {
		t.Fatalf("unexpected notice %+v", notice)
	}
}

func TestPhoneDigestIsStable(t *testing.T) {
	a := PhoneDigest("5512345678")
	if a == "" || len(a) != 16 {
		t.Fatalf("unexpected digest %q", a)
	}
	if a != PhoneDigest("5512345678") {
		t.Fatalf("digest not stable")
	}
	if a == PhoneDigest("5512345679") {
		t.Fatalf("digests collide")
	}
	if strings.Contains(a, "5512345678") {
		t.Fatalf("digest leaks phone")
	}
	if PhoneDigest("") != "" {
		t.Fatalf("expected empty digest")
	}
}

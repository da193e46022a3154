package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/orderdesk-backend/pkg/db/models"
	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
)

func TestRenderDeadLetters(t *testing.T) {
	msg := "publish order.decided:\n  topic not found"
	rows := []models.OutboxDLQ{{
		EventID:       uuid.MustParse("0b8f4f5e-2e0b-4f6a-9d43-0c1c2f0a9e11"),
		EventType:     enums.EventOrderDecided,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		ErrorReason:   enums.OutboxDLQReasonNonRetryable,
		ErrorMessage:  &msg,
		AttemptCount:  3,
		FailedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}}

	var buf bytes.Buffer
	if err := renderDeadLetters(&buf, rows); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := strings.ToLower(buf.String())
	for _, want := range []string{"0b8f4f5e-2e0b-4f6a-9d43-0c1c2f0a9e11", "non_retryable", "2026-03-01 12:00:00", "1 entries"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestOneLine(t *testing.T) {
	if got := oneLine("a\n  b\tc", 10); got != "a b c" {
		t.Fatalf("unexpected collapse %q", got)
	}
	if got := oneLine(strings.Repeat("é", 20), 5); got != "éééé…" {
		t.Fatalf("unexpected clip %q", got)
	}
}

package eventbus

import (
	"errors"
	"fmt"
	"testing"
)

func TestPermanentWrapsAndUnwraps(t *testing.T) {
	base := errors.New("topic not found")
	err := fmt.Errorf("publish: %w", Permanent(base))

	if !IsPermanent(err) {
		t.Fatalf("expected wrapped permanent error to be detected")
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected cause to be preserved")
	}
	if IsPermanent(base) {
		t.Fatalf("plain error must not be permanent")
	}
	if Permanent(nil) != nil {
		t.Fatalf("Permanent(nil) should be nil")
	}
}

func TestMessageAttr(t *testing.T) {
	msg := Message{Attributes: map[string]string{AttrEventType: "order.decided"}}
	if got := msg.Attr(AttrEventType); got != "order.decided" {
		t.Fatalf("unexpected attr %q", got)
	}
	if got := (Message{}).Attr(AttrEventID); got != "" {
		t.Fatalf("expected empty attr, got %q", got)
	}
}

package pubsub

import (
	"errors"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/orderdesk-backend/pkg/eventbus"
)

func TestClassifyPublishError(t *testing.T) {
	permanent := []codes.Code{codes.NotFound, codes.PermissionDenied, codes.InvalidArgument, codes.FailedPrecondition}
	for _, code := range permanent {
		err := classifyPublishError(status.Error(code, "nope"))
		if !eventbus.IsPermanent(err) {
			t.Fatalf("expected %s to be permanent", code)
		}
	}

	for _, code := range []codes.Code{codes.Unavailable, codes.DeadlineExceeded, codes.Internal} {
		err := classifyPublishError(status.Error(code, "later"))
		if eventbus.IsPermanent(err) {
			t.Fatalf("expected %s to be retryable", code)
		}
	}

	if eventbus.IsPermanent(classifyPublishError(errors.New("plain"))) {
		t.Fatalf("plain errors are retryable")
	}
}

func TestResourceNames(t *testing.T) {
	c := &Client{projectID: "proj"}
	if got := c.topicResourceName("orders"); got != "projects/proj/topics/orders" {
		t.Fatalf("unexpected topic name %q", got)
	}
	if got := c.topicResourceName("projects/other/topics/x"); got != "projects/other/topics/x" {
		t.Fatalf("full topic name should pass through, got %q", got)
	}
	if got := c.subscriptionResourceName(" sub "); got != "projects/proj/subscriptions/sub" {
		t.Fatalf("unexpected subscription name %q", got)
	}
	if got := c.subscriptionResourceName(""); got != "" {
		t.Fatalf("expected empty name, got %q", got)
	}
}

func TestTrimmedNames(t *testing.T) {
	got := trimmedNames([]string{" a ", "", "b"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected names %v", got)
	}
}

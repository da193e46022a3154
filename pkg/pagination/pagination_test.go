package pagination

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCursorRoundTripIsURLSafe(t *testing.T) {
	c := Cursor{At: time.Date(2026, 3, 1, 12, 30, 0, 123, time.FixedZone("CST", -6*3600)), ID: uuid.New()}
	token := c.Encode()
	if strings.ContainsAny(token, "+/=") {
		t.Fatalf("token %q is not url safe", token)
	}
	decoded, err := Decode(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !decoded.At.Equal(c.At) || decoded.ID != c.ID {
		t.Fatalf("round trip mismatch: %+v vs %+v", decoded, c)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if c, err := Decode("  "); err != nil || c != nil {
		t.Fatalf("empty token should be nil, got %v %v", c, err)
	}
	for _, token := range []string{"%%%", "bm9waXBl", Cursor{ID: uuid.New()}.Encode()[:10]} {
		if _, err := Decode(token); err == nil {
			t.Fatalf("expected error for %q", token)
		}
	}
}

func TestTrimAndLimits(t *testing.T) {
	if NormalizeLimit(0) != DefaultLimit || NormalizeLimit(500) != MaxLimit || NormalizeLimit(7) != 7 {
		t.Fatal("unexpected normalization")
	}
	if Probe(2) != 3 {
		t.Fatalf("expected probe of 3")
	}
	page, more := Trim([]int{1, 2, 3}, 2)
	if !more || len(page) != 2 {
		t.Fatalf("expected trimmed page with more, got %v %v", page, more)
	}
	page, more = Trim([]int{1, 2}, 2)
	if more || len(page) != 2 {
		t.Fatalf("expected full page without more, got %v %v", page, more)
	}
}

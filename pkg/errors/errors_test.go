package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataFor(t *testing.T) {
	if got := MetadataFor(CodeInsufficientStock).HTTPStatus; got != http.StatusConflict {
		t.Fatalf("insufficient stock should map to 409, got %d", got)
	}
	if got := MetadataFor(CodeInvalidCoupon).HTTPStatus; got != http.StatusUnprocessableEntity {
		t.Fatalf("invalid coupon should map to 422, got %d", got)
	}
	if got := MetadataFor(Code("bogus")); got != metadataByCode[CodeInternal] {
		t.Fatalf("unknown code should fall back to internal metadata")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("boom")
	err := Wrap(CodeDependency, cause, "persist order")
	if !stdErrors.Is(err, cause) {
		t.Fatal("wrapped cause should be discoverable via errors.Is")
	}
	if As(fmt.Errorf("outer: %w", err)) == nil {
		t.Fatal("typed error should be discoverable through wrapping")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", err.Code())
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeDeletionBlocked, "product has dependent stock").
		WithDetails(map[string]any{"blocking_resellers": 3})
	details, ok := err.Details().(map[string]any)
	if !ok || details["blocking_resellers"] != 3 {
		t.Fatalf("details not retained: %v", err.Details())
	}
}

package orders

import (
	"strings"
	"testing"
	"time"
)

func TestNewOrderNumberFormat(t *testing.T) {
	at := time.Date(2026, 2, 3, 15, 4, 5, 0, time.UTC)
	number := NewOrderNumber(at)

	if !IsOrderNumber(number) {
		t.Fatalf("generated number %q does not match format", number)
	}
	if !strings.HasPrefix(number, "PM-20260203150405-") {
		t.Fatalf("expected UTC timestamp segment, got %q", number)
	}
}

func TestNewOrderNumberUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	at := time.Date(2026, 2, 3, 20, 0, 0, 0, loc)
	number := NewOrderNumber(at)
	if !strings.HasPrefix(number, "PM-20260203150000-") {
		t.Fatalf("expected timestamp normalized to UTC, got %q", number)
	}
}

func TestIsOrderNumberRejectsOtherShapes(t *testing.T) {
	for _, value := range []string{
		"",
		"PM-2026-1",
		"XX-20260203150405-12345",
		"PM-20260203150405-1234",
		"pm-20260203150405-12345",
	} {
		if IsOrderNumber(value) {
			t.Fatalf("expected %q to be rejected", value)
		}
	}
}

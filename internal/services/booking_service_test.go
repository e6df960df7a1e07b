package services

import (
	"testing"
	"time"

	"github.com/arian-h/TutorAppBack/internal/models"
)

func testBooking(status string, start time.Time) *models.Booking {
	return &models.Booking{
		ID:              11,
		StudentID:       42,
		TutorID:         7,
		ScheduledAt:     start,
		DurationMinutes: 60,
		Status:          status,
		Price:           50,
	}
}

func TestNormalizeRequestedStatusAcceptsAliases(t *testing.T) {
	cases := map[string]string{
		"confirm":    "confirmed",
		"Confirmed":  "confirmed",
		"complete":   "completed",
		"cancel":     "cancelled",
		"canceled":   "cancelled",
		" cancelled": "cancelled",
		"refund":     "refunded",
	}
	for input, expected := range cases {
		got, err := normalizeRequestedStatus(input)
		if err != nil {
			t.Fatalf("normalizeRequestedStatus(%q): %v", input, err)
		}
		if got != expected {
			t.Fatalf("normalizeRequestedStatus(%q) = %q, expected %q", input, got, expected)
		}
	}

	if _, err := normalizeRequestedStatus("pending"); err != ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus for pending, got %v", err)
	}
}

func TestValidateStatusTransitionStudent(t *testing.T) {
	now := time.Date(2026, 3, 16, 8, 0, 0, 0, time.UTC)
	start := now.Add(24 * time.Hour)

	if err := validateStatusTransition("student", 42, testBooking("pending", start), "cancelled", now); err != nil {
		t.Fatalf("student cancel pending: %v", err)
	}
	if err := validateStatusTransition("student", 42, testBooking("confirmed", start), "cancelled", now); err != nil {
		t.Fatalf("student cancel confirmed: %v", err)
	}
	if err := validateStatusTransition("student", 42, testBooking("completed", start), "cancelled", now); err != ErrInvalidStateTransition {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
	if err := validateStatusTransition("student", 42, testBooking("pending", start), "confirmed", now); err != ErrForbidden {
		t.Fatalf("student confirming should be forbidden, got %v", err)
	}
	if err := validateStatusTransition("student", 99, testBooking("pending", start), "cancelled", now); err != ErrForbidden {
		t.Fatalf("other student should be forbidden, got %v", err)
	}
}

func TestValidateStatusTransitionTutor(t *testing.T) {
	now := time.Date(2026, 3, 16, 8, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-2 * time.Hour)

	if err := validateStatusTransition("tutor", 7, testBooking("pending", future), "confirmed", now); err != nil {
		t.Fatalf("tutor confirm pending: %v", err)
	}
	if err := validateStatusTransition("tutor", 7, testBooking("confirmed", future), "confirmed", now); err != ErrInvalidStateTransition {
		t.Fatalf("re-confirming should fail, got %v", err)
	}
	if err := validateStatusTransition("tutor", 7, testBooking("confirmed", past), "completed", now); err != nil {
		t.Fatalf("tutor complete after end: %v", err)
	}
	if err := validateStatusTransition("tutor", 7, testBooking("confirmed", future), "completed", now); err != ErrInvalidStateTransition {
		t.Fatalf("completing before the lesson ends should fail, got %v", err)
	}
	if err := validateStatusTransition("tutor", 7, testBooking("pending", future), "cancelled", now); err != nil {
		t.Fatalf("tutor cancel pending: %v", err)
	}
	if err := validateStatusTransition("tutor", 7, testBooking("pending", future), "refunded", now); err != ErrForbidden {
		t.Fatalf("tutor refund should be forbidden, got %v", err)
	}
	if err := validateStatusTransition("tutor", 8, testBooking("pending", future), "confirmed", now); err != ErrForbidden {
		t.Fatalf("other tutor should be forbidden, got %v", err)
	}
}

func TestValidateStatusTransitionAdmin(t *testing.T) {
	now := time.Date(2026, 3, 16, 8, 0, 0, 0, time.UTC)
	start := now.Add(24 * time.Hour)

	if err := validateStatusTransition("admin", 1, testBooking("cancelled", start), "refunded", now); err != nil {
		t.Fatalf("admin refund cancelled: %v", err)
	}
	if err := validateStatusTransition("admin", 1, testBooking("pending", start), "refunded", now); err != ErrInvalidStateTransition {
		t.Fatalf("refunding a pending booking should fail, got %v", err)
	}
	if err := validateStatusTransition("admin", 1, testBooking("pending", start), "confirmed", now); err != ErrForbidden {
		t.Fatalf("admin confirming should be forbidden, got %v", err)
	}
}

func TestIsLateCancellation(t *testing.T) {
	now := time.Date(2026, 3, 16, 8, 0, 0, 0, time.UTC)

	if !isLateCancellation(testBooking("confirmed", now.Add(11*time.Hour)), now) {
		t.Fatal("cancellation 11h before start should be late")
	}
	if isLateCancellation(testBooking("confirmed", now.Add(13*time.Hour)), now) {
		t.Fatal("cancellation 13h before start should not be late")
	}
	if isLateCancellation(testBooking("pending", now.Add(1*time.Hour)), now) {
		t.Fatal("pending bookings never incur a penalty")
	}
}

func TestCanAccessBooking(t *testing.T) {
	booking := testBooking("pending", time.Now())

	if !canAccessBooking("student", 42, booking) {
		t.Fatal("owning student should have access")
	}
	if canAccessBooking("student", 43, booking) {
		t.Fatal("other student should not have access")
	}
	if !canAccessBooking("tutor", 7, booking) {
		t.Fatal("owning tutor should have access")
	}
	if !canAccessBooking("admin", 1, booking) {
		t.Fatal("admin should always have access")
	}
	if canAccessBooking("", 42, booking) {
		t.Fatal("unknown role should not have access")
	}
}

package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/arian-h/TutorAppBack/internal/models"
	"github.com/jackc/pgx/v5"
)

type stubVideoBookingStore struct {
	booking     *models.Booking
	getErr      error
	lastChannel string
}

func (s *stubVideoBookingStore) GetByID(_ context.Context, _ int64) (*models.Booking, error) {
	return s.booking, s.getErr
}

func (s *stubVideoBookingStore) SetVideoChannel(_ context.Context, _ int64, channel string) (*models.Booking, error) {
	if s.booking.VideoChannel == nil {
		s.booking.VideoChannel = &channel
	}
	s.lastChannel = *s.booking.VideoChannel
	return s.booking, nil
}

type stubTokenBuilder struct {
	token       string
	err         error
	lastChannel string
	lastUID     uint32
	lastExpire  uint32
}

func (s *stubTokenBuilder) BuildToken(channel string, uid uint32, expireTs uint32) (string, error) {
	s.lastChannel = channel
	s.lastUID = uid
	s.lastExpire = expireTs
	return s.token, s.err
}

func confirmedVideoBooking(start time.Time) *models.Booking {
	return &models.Booking{
		ID:              11,
		StudentID:       42,
		TutorID:         7,
		ScheduledAt:     start,
		DurationMinutes: 60,
		Status:          "confirmed",
	}
}

func newTestVideoService(store *stubVideoBookingStore, builder *stubTokenBuilder, now time.Time) *VideoService {
	return &VideoService{
		bookingRepo:  store,
		tokenBuilder: builder,
		appID:        "test-app",
		now:          func() time.Time { return now },
	}
}

func TestIssueTokenForParticipantInsideWindow(t *testing.T) {
	start := time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC)
	store := &stubVideoBookingStore{booking: confirmedVideoBooking(start)}
	builder := &stubTokenBuilder{token: "rtc-token"}
	service := newTestVideoService(store, builder, start.Add(5*time.Minute))

	token, err := service.IssueToken(context.Background(), 42, "student", 11)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	if token.Token != "rtc-token" {
		t.Fatalf("expected builder token, got %q", token.Token)
	}
	if token.UID != 42 {
		t.Fatalf("expected uid 42, got %d", token.UID)
	}
	if token.AppID != "test-app" {
		t.Fatalf("expected app id test-app, got %q", token.AppID)
	}
	if !strings.HasPrefix(token.Channel, "lesson-11-") {
		t.Fatalf("expected channel prefixed with booking id, got %q", token.Channel)
	}
	if builder.lastChannel != token.Channel {
		t.Fatalf("builder got channel %q, response says %q", builder.lastChannel, token.Channel)
	}
	// Expiry runs to the scheduled end plus the join grace, and the builder
	// receives it as an absolute Unix timestamp.
	expectedExpiry := start.Add(75 * time.Minute)
	if !token.ExpiresAt.Equal(expectedExpiry) {
		t.Fatalf("expected expiry %v, got %v", expectedExpiry, token.ExpiresAt)
	}
	if builder.lastExpire != uint32(expectedExpiry.Unix()) {
		t.Fatalf("expected builder expiry ts %d, got %d", uint32(expectedExpiry.Unix()), builder.lastExpire)
	}
}

func TestAgoraTokenBuilderBuildsToken(t *testing.T) {
	builder := NewAgoraTokenBuilder("970CA35de60c44645bbae8a215061b33", "5CFd2fd1755d40ecb72977518be15d3b")

	token, err := builder.BuildToken("lesson-1-abcd1234", 42, uint32(time.Now().Add(time.Hour).Unix()))
	if err != nil {
		t.Fatalf("BuildToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected a non-empty token")
	}
}

func TestIssueTokenReusesPersistedChannel(t *testing.T) {
	start := time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC)
	existing := "lesson-11-abcd1234"
	booking := confirmedVideoBooking(start)
	booking.VideoChannel = &existing
	store := &stubVideoBookingStore{booking: booking}
	builder := &stubTokenBuilder{token: "rtc-token"}
	service := newTestVideoService(store, builder, start)

	token, err := service.IssueToken(context.Background(), 7, "tutor", 11)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if token.Channel != existing {
		t.Fatalf("expected persisted channel %q, got %q", existing, token.Channel)
	}
	if store.lastChannel != "" {
		t.Fatal("SetVideoChannel should not be called when a channel exists")
	}
}

func TestIssueTokenRejectsNonParticipant(t *testing.T) {
	start := time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC)
	store := &stubVideoBookingStore{booking: confirmedVideoBooking(start)}
	service := newTestVideoService(store, &stubTokenBuilder{}, start)

	if _, err := service.IssueToken(context.Background(), 99, "student", 11); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := service.IssueToken(context.Background(), 1, "admin", 11); !errors.Is(err, ErrForbidden) {
		t.Fatalf("admins cannot join calls, got %v", err)
	}
}

func TestIssueTokenRejectsOutsideJoinWindow(t *testing.T) {
	start := time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC)
	store := &stubVideoBookingStore{booking: confirmedVideoBooking(start)}

	tooEarly := newTestVideoService(store, &stubTokenBuilder{}, start.Add(-30*time.Minute))
	if _, err := tooEarly.IssueToken(context.Background(), 42, "student", 11); !errors.Is(err, ErrSessionNotJoinable) {
		t.Fatalf("expected ErrSessionNotJoinable before the window, got %v", err)
	}

	tooLate := newTestVideoService(store, &stubTokenBuilder{}, start.Add(2*time.Hour))
	if _, err := tooLate.IssueToken(context.Background(), 42, "student", 11); !errors.Is(err, ErrSessionNotJoinable) {
		t.Fatalf("expected ErrSessionNotJoinable after the window, got %v", err)
	}
}

func TestIssueTokenRejectsUnconfirmedBooking(t *testing.T) {
	start := time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC)
	booking := confirmedVideoBooking(start)
	booking.Status = "pending"
	store := &stubVideoBookingStore{booking: booking}
	service := newTestVideoService(store, &stubTokenBuilder{}, start)

	if _, err := service.IssueToken(context.Background(), 42, "student", 11); !errors.Is(err, ErrSessionNotJoinable) {
		t.Fatalf("expected ErrSessionNotJoinable, got %v", err)
	}
}

func TestIssueTokenPropagatesMissingBooking(t *testing.T) {
	store := &stubVideoBookingStore{getErr: pgx.ErrNoRows}
	service := newTestVideoService(store, &stubTokenBuilder{}, time.Now())

	if _, err := service.IssueToken(context.Background(), 42, "student", 11); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected pgx.ErrNoRows, got %v", err)
	}
}

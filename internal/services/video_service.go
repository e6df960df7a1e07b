package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AgoraIO-Community/go-tokenbuilder/rtctokenbuilder"
	"github.com/arian-h/TutorAppBack/internal/models"
	"github.com/arian-h/TutorAppBack/internal/repository"
	"github.com/google/uuid"
)

// ErrSessionNotJoinable is returned when the booking exists but its video
// room cannot be entered right now.
var ErrSessionNotJoinable = errors.New("video session not joinable")

// joinGrace pads the joinable window on both sides of the lesson and extends
// the token past the scheduled end.
const joinGrace = 15 * time.Minute

// RTCTokenBuilder builds a channel token valid until expireTs, an absolute
// Unix timestamp.
type RTCTokenBuilder interface {
	BuildToken(channel string, uid uint32, expireTs uint32) (string, error)
}

// AgoraTokenBuilder issues RTC tokens with the Agora app credentials.
type AgoraTokenBuilder struct {
	appID          string
	appCertificate string
}

func NewAgoraTokenBuilder(appID, appCertificate string) *AgoraTokenBuilder {
	return &AgoraTokenBuilder{appID: appID, appCertificate: appCertificate}
}

func (b *AgoraTokenBuilder) BuildToken(channel string, uid uint32, expireTs uint32) (string, error) {
	return rtctokenbuilder.BuildTokenWithUID(
		b.appID,
		b.appCertificate,
		channel,
		uid,
		rtctokenbuilder.RolePublisher,
		expireTs,
	)
}

type videoBookingStore interface {
	GetByID(ctx context.Context, bookingID int64) (*models.Booking, error)
	SetVideoChannel(ctx context.Context, bookingID int64, channel string) (*models.Booking, error)
}

type VideoService struct {
	bookingRepo  videoBookingStore
	tokenBuilder RTCTokenBuilder
	appID        string
	now          func() time.Time
}

func NewVideoService(bookingRepo *repository.BookingRepository, tokenBuilder RTCTokenBuilder, appID string) *VideoService {
	return &VideoService{
		bookingRepo:  bookingRepo,
		tokenBuilder: tokenBuilder,
		appID:        appID,
		now:          time.Now,
	}
}

// IssueToken authorizes the caller as a participant of the booking and
// returns a time-boxed RTC token for its channel. The channel name is
// derived once per booking and persisted so both parties join the same room.
func (s *VideoService) IssueToken(
	ctx context.Context,
	actorID int64,
	role string,
	bookingID int64,
) (*models.VideoToken, error) {
	if bookingID <= 0 {
		return nil, ErrInvalidInput
	}
	if role != "student" && role != "tutor" {
		return nil, ErrForbidden
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if (role == "student" && booking.StudentID != actorID) ||
		(role == "tutor" && booking.TutorID != actorID) {
		return nil, ErrForbidden
	}
	if booking.Status != "confirmed" {
		return nil, ErrSessionNotJoinable
	}

	now := s.now().UTC()
	joinableFrom := booking.ScheduledAt.UTC().Add(-joinGrace)
	joinableUntil := booking.End().UTC().Add(joinGrace)
	if now.Before(joinableFrom) || now.After(joinableUntil) {
		return nil, ErrSessionNotJoinable
	}

	channel := ""
	if booking.VideoChannel != nil && *booking.VideoChannel != "" {
		channel = *booking.VideoChannel
	} else {
		candidate := fmt.Sprintf("lesson-%d-%s", booking.ID, uuid.NewString()[:8])
		updated, err := s.bookingRepo.SetVideoChannel(ctx, booking.ID, candidate)
		if err != nil {
			return nil, err
		}
		// SetVideoChannel keeps the first writer's channel, so a concurrent
		// issuance by the other participant converges on one room.
		channel = *updated.VideoChannel
	}

	expiresAt := joinableUntil
	token, err := s.tokenBuilder.BuildToken(channel, uint32(actorID), uint32(expiresAt.Unix()))
	if err != nil {
		return nil, err
	}

	return &models.VideoToken{
		Token:     token,
		Channel:   channel,
		UID:       uint32(actorID),
		AppID:     s.appID,
		ExpiresAt: expiresAt,
	}, nil
}

package services

import (
	"context"
	"testing"

	"github.com/arian-h/TutorAppBack/internal/models"
)

type stubTutorMatcher struct {
	tutors []models.TutorProfile
	err    error
}

func (s *stubTutorMatcher) ListAll(_ context.Context) ([]models.TutorProfile, error) {
	return s.tutors, s.err
}

func tutorProfile(userID int64, subjects []string, rating, rate float64, experience int, qualifications []string) models.TutorProfile {
	return models.TutorProfile{
		UserID:          userID,
		Subjects:        &subjects,
		Rating:          &rating,
		HourlyRate:      &rate,
		ExperienceYears: &experience,
		Qualifications:  &qualifications,
	}
}

func studentProfileWith(subjects []string, budget float64) *models.StudentProfile {
	return &models.StudentProfile{
		Subjects:      &subjects,
		MaxHourlyRate: &budget,
	}
}

func TestCalculateMatchScore(t *testing.T) {
	student := studentProfileWith([]string{"Math", "physics"}, 40)
	tutor := tutorProfile(7, []string{"math"}, 4.8, 35, 5, []string{"MSc Mathematics"})

	// subject 40 + rating 20 + experience 15 + qualifications 10 + budget 15
	if got := calculateMatchScore(student, &tutor); got != 100 {
		t.Fatalf("expected score 100, got %d", got)
	}

	noOverlap := tutorProfile(8, []string{"history"}, 3.0, 80, 1, nil)
	if got := calculateMatchScore(student, &noOverlap); got != 0 {
		t.Fatalf("expected score 0, got %d", got)
	}
}

func TestCalculateMatchScoreNormalizesSubjectNames(t *testing.T) {
	student := studentProfileWith([]string{"Computer Science"}, 0)
	tutor := tutorProfile(7, []string{"computer_science"}, 0, 50, 0, nil)

	if got := calculateMatchScore(student, &tutor); got != 40 {
		t.Fatalf("expected subject match worth 40, got %d", got)
	}
}

func TestGetRecommendedTutorsOrdersByScoreThenRating(t *testing.T) {
	strong := tutorProfile(1, []string{"math"}, 4.9, 30, 5, []string{"PhD"})
	weaker := tutorProfile(2, []string{"history"}, 4.9, 30, 5, []string{"PhD"})
	tiedLowRating := tutorProfile(3, []string{"math"}, 4.6, 30, 5, []string{"PhD"})

	service := NewRecommendationService(&stubTutorMatcher{
		tutors: []models.TutorProfile{weaker, tiedLowRating, strong},
	})

	matched, err := service.GetRecommendedTutors(context.Background(), studentProfileWith([]string{"math"}, 40), 10)
	if err != nil {
		t.Fatalf("GetRecommendedTutors: %v", err)
	}

	if len(matched) != 3 {
		t.Fatalf("expected 3 tutors, got %d", len(matched))
	}
	if matched[0].UserID != 1 {
		t.Fatalf("expected tutor 1 first, got %d", matched[0].UserID)
	}
	if matched[1].UserID != 3 {
		t.Fatalf("expected tutor 3 second (same score, lower rating than 1), got %d", matched[1].UserID)
	}
	if matched[2].UserID != 2 {
		t.Fatalf("expected tutor 2 last, got %d", matched[2].UserID)
	}
}

func TestGetRecommendedTutorsAppliesLimit(t *testing.T) {
	service := NewRecommendationService(&stubTutorMatcher{
		tutors: []models.TutorProfile{
			tutorProfile(1, []string{"math"}, 4.0, 30, 1, nil),
			tutorProfile(2, []string{"math"}, 4.0, 30, 1, nil),
			tutorProfile(3, []string{"math"}, 4.0, 30, 1, nil),
		},
	})

	matched, err := service.GetRecommendedTutors(context.Background(), studentProfileWith([]string{"math"}, 0), 2)
	if err != nil {
		t.Fatalf("GetRecommendedTutors: %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(matched))
	}
}

func TestGetRecommendedTutorsHandlesNilProfile(t *testing.T) {
	service := NewRecommendationService(&stubTutorMatcher{
		tutors: []models.TutorProfile{tutorProfile(1, []string{"math"}, 4.9, 30, 5, []string{"PhD"})},
	})

	matched, err := service.GetRecommendedTutors(context.Background(), nil, 10)
	if err != nil {
		t.Fatalf("GetRecommendedTutors: %v", err)
	}
	if len(matched) != 1 {
		t.Fatalf("expected 1 tutor, got %d", len(matched))
	}
	// No subjects or budget to match against; only tutor-side bonuses apply.
	if matched[0].MatchScore != 45 {
		t.Fatalf("expected score 45, got %d", matched[0].MatchScore)
	}
}

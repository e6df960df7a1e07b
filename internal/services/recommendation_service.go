package services

import (
	"context"
	"sort"
	"strings"

	"github.com/arian-h/TutorAppBack/internal/models"
)

type TutorMatcher interface {
	ListAll(ctx context.Context) ([]models.TutorProfile, error)
}

// RecommendationService ranks approved tutors for a student by subject
// overlap, rating, experience and budget fit.
type RecommendationService struct {
	tutorRepo TutorMatcher
}

func NewRecommendationService(tutorRepo TutorMatcher) *RecommendationService {
	return &RecommendationService{tutorRepo: tutorRepo}
}

func (s *RecommendationService) GetRecommendedTutors(
	ctx context.Context,
	profile *models.StudentProfile,
	limit int,
) ([]models.TutorWithScore, error) {
	tutors, err := s.tutorRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]models.TutorWithScore, 0, len(tutors))
	for _, tutor := range tutors {
		matched = append(matched, models.TutorWithScore{
			TutorProfile: tutor,
			MatchScore:   calculateMatchScore(profile, &tutor),
		})
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].MatchScore == matched[j].MatchScore {
			return floatValue(matched[i].Rating) > floatValue(matched[j].Rating)
		}
		return matched[i].MatchScore > matched[j].MatchScore
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, nil
}

func calculateMatchScore(profile *models.StudentProfile, tutor *models.TutorProfile) int {
	score := 0
	wanted := normalizeSubjects(studentSubjects(profile))
	offered := normalizeSubjects(sliceValue(tutor.Subjects))

	for subject := range wanted {
		if _, ok := offered[subject]; ok {
			score += 40
		}
	}

	if floatValue(tutor.Rating) > 4.5 {
		score += 20
	}
	if intValue(tutor.ExperienceYears) > 3 {
		score += 15
	}
	if len(sliceValue(tutor.Qualifications)) > 0 {
		score += 10
	}
	if budget := floatValue(studentBudget(profile)); budget > 0 && floatValue(tutor.HourlyRate) <= budget {
		score += 15
	}

	return score
}

func normalizeSubjects(values []string) map[string]struct{} {
	normalized := make(map[string]struct{}, len(values))
	for _, value := range values {
		if key := normalizeSubject(value); key != "" {
			normalized[key] = struct{}{}
		}
	}
	return normalized
}

func normalizeSubject(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	value = strings.ReplaceAll(value, " ", "_")
	value = strings.ReplaceAll(value, "-", "_")
	return value
}

func studentSubjects(profile *models.StudentProfile) []string {
	if profile == nil {
		return nil
	}
	return sliceValue(profile.Subjects)
}

func studentBudget(profile *models.StudentProfile) *float64 {
	if profile == nil {
		return nil
	}
	return profile.MaxHourlyRate
}

func sliceValue(values *[]string) []string {
	if values == nil {
		return nil
	}
	return *values
}

func floatValue(value *float64) float64 {
	if value == nil {
		return 0
	}
	return *value
}

func intValue(value *int) int {
	if value == nil {
		return 0
	}
	return *value
}

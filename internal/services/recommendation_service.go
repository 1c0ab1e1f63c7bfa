package services

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ttthanh1411/gym/internal/models"
)

//go:embed recommendation_rules.yaml
var defaultRecommendationRules []byte

type RecommendationBand struct {
	Category string   `yaml:"category"`
	MaxBMI   *float64 `yaml:"max_bmi"`
	Keywords []string `yaml:"keywords"`
}

type RecommendationRules struct {
	Bands []RecommendationBand `yaml:"bands"`
}

type Recommendation struct {
	BMI       float64     `json:"bmi"`
	Category  string      `json:"category"`
	CourseIDs []uuid.UUID `json:"course_ids"`
}

type courseLister interface {
	List(ctx context.Context) ([]models.CourseListing, error)
}

type RecommendationService struct {
	courseRepo courseLister
	rules      RecommendationRules
}

// LoadRecommendationRules reads the rule table from path, or the built-in
// table when path is empty.
func LoadRecommendationRules(path string) (RecommendationRules, error) {
	data := defaultRecommendationRules
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return RecommendationRules{}, fmt.Errorf("read recommendation rules: %w", err)
		}
		data = fileData
	}
	return ParseRecommendationRules(data)
}

func ParseRecommendationRules(data []byte) (RecommendationRules, error) {
	var rules RecommendationRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return RecommendationRules{}, fmt.Errorf("parse recommendation rules: %w", err)
	}
	if len(rules.Bands) == 0 {
		return RecommendationRules{}, errors.New("recommendation rules define no bands")
	}

	previous := math.Inf(-1)
	for i := range rules.Bands {
		band := &rules.Bands[i]
		if band.Category == "" || len(band.Keywords) == 0 {
			return RecommendationRules{}, fmt.Errorf("recommendation band %d is incomplete", i)
		}
		if band.MaxBMI == nil {
			if i != len(rules.Bands)-1 {
				return RecommendationRules{}, fmt.Errorf("only the last band may omit max_bmi")
			}
		} else if *band.MaxBMI <= previous {
			return RecommendationRules{}, fmt.Errorf("recommendation band %d is out of order", i)
		} else {
			previous = *band.MaxBMI
		}
		for j, keyword := range band.Keywords {
			band.Keywords[j] = normalizeKeyword(keyword)
		}
	}
	return rules, nil
}

func NewRecommendationService(courseRepo courseLister, rules RecommendationRules) *RecommendationService {
	return &RecommendationService{courseRepo: courseRepo, rules: rules}
}

// Recommend returns the courses whose service name matches a keyword of the
// caller's BMI band. Height is in centimetres and weight in kilograms.
func (s *RecommendationService) Recommend(ctx context.Context, heightCM, weightKG float64) (*Recommendation, error) {
	if !validAmount(heightCM) || !validAmount(weightKG) || heightCM <= 0 || weightKG <= 0 {
		return nil, ErrInvalidInput
	}

	bmi := BMI(heightCM, weightKG)
	band, ok := s.rules.bandFor(bmi)
	if !ok {
		return &Recommendation{BMI: roundBMI(bmi), CourseIDs: []uuid.UUID{}}, nil
	}

	courses, err := s.courseRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	result := &Recommendation{
		BMI:       roundBMI(bmi),
		Category:  band.Category,
		CourseIDs: make([]uuid.UUID, 0),
	}
	for _, course := range courses {
		if course.ServiceName == nil {
			continue
		}
		if matchesKeyword(normalizeKeyword(*course.ServiceName), band.Keywords) {
			result.CourseIDs = append(result.CourseIDs, course.ID)
		}
	}
	return result, nil
}

func BMI(heightCM, weightKG float64) float64 {
	meters := heightCM / 100
	return weightKG / (meters * meters)
}

func (r RecommendationRules) bandFor(bmi float64) (RecommendationBand, bool) {
	for _, band := range r.Bands {
		if band.MaxBMI == nil || bmi < *band.MaxBMI {
			return band, true
		}
	}
	return RecommendationBand{}, false
}

func matchesKeyword(serviceName string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(serviceName, keyword) {
			return true
		}
	}
	return false
}

func normalizeKeyword(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.ReplaceAll(value, "_", " ")
	value = strings.ReplaceAll(value, "-", " ")
	return strings.Join(strings.Fields(value), " ")
}

func roundBMI(bmi float64) float64 {
	return math.Round(bmi*10) / 10
}

package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/ttthanh1411/gym/internal/models"
)

type stubCourseLister struct {
	courses []models.CourseListing
	err     error
	calls   int
}

func (s *stubCourseLister) List(_ context.Context) ([]models.CourseListing, error) {
	s.calls++
	return s.courses, s.err
}

func listing(serviceName string) models.CourseListing {
	course := models.CourseListing{WorkoutCourse: models.WorkoutCourse{ID: uuid.New(), Name: serviceName + " course"}}
	if serviceName != "" {
		course.ServiceName = &serviceName
	}
	return course
}

func TestRecommendPicksCoursesForBand(t *testing.T) {
	yoga := listing("Yoga Flow")
	cardio := listing("CARDIO-Burn")
	weightGain := listing("weight_gain basics")
	gym := listing("Gym")
	unnamed := listing("")

	lister := &stubCourseLister{courses: []models.CourseListing{yoga, cardio, weightGain, gym, unnamed}}
	rules, err := LoadRecommendationRules("")
	if err != nil {
		t.Fatalf("LoadRecommendationRules: %v", err)
	}
	service := NewRecommendationService(lister, rules)

	cases := []struct {
		name     string
		height   float64
		weight   float64
		bmi      float64
		category string
		want     []uuid.UUID
	}{
		{"underweight", 170, 50, 17.3, "underweight", []uuid.UUID{yoga.ID, weightGain.ID}},
		{"normal", 170, 65, 22.5, "normal", []uuid.UUID{yoga.ID, gym.ID}},
		{"overweight", 170, 90, 31.1, "overweight", []uuid.UUID{cardio.ID}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := service.Recommend(context.Background(), tc.height, tc.weight)
			if err != nil {
				t.Fatalf("Recommend: %v", err)
			}
			if got.BMI != tc.bmi || got.Category != tc.category {
				t.Fatalf("expected %.1f/%s, got %.1f/%s", tc.bmi, tc.category, got.BMI, got.Category)
			}
			if len(got.CourseIDs) != len(tc.want) {
				t.Fatalf("expected %d courses, got %v", len(tc.want), got.CourseIDs)
			}
			for i := range tc.want {
				if got.CourseIDs[i] != tc.want[i] {
					t.Fatalf("course %d: expected %s, got %s", i, tc.want[i], got.CourseIDs[i])
				}
			}
		})
	}
}

func TestRecommendBandBoundaries(t *testing.T) {
	rules, err := LoadRecommendationRules("")
	if err != nil {
		t.Fatalf("LoadRecommendationRules: %v", err)
	}

	if band, _ := rules.bandFor(18.5); band.Category != "normal" {
		t.Fatalf("expected 18.5 to be normal, got %q", band.Category)
	}
	if band, _ := rules.bandFor(24.99); band.Category != "normal" {
		t.Fatalf("expected 24.99 to be normal, got %q", band.Category)
	}
	if band, _ := rules.bandFor(25); band.Category != "overweight" {
		t.Fatalf("expected 25 to be overweight, got %q", band.Category)
	}
}

func TestRecommendRejectsInvalidMeasurements(t *testing.T) {
	lister := &stubCourseLister{}
	rules, _ := LoadRecommendationRules("")
	service := NewRecommendationService(lister, rules)

	for _, input := range [][2]float64{{0, 60}, {170, 0}, {-170, 60}} {
		if _, err := service.Recommend(context.Background(), input[0], input[1]); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("Recommend(%v): expected ErrInvalidInput, got %v", input, err)
		}
	}
	if lister.calls != 0 {
		t.Fatal("expected no catalogue lookup for invalid input")
	}
}

func TestRecommendReturnsEmptyListWithoutMatches(t *testing.T) {
	lister := &stubCourseLister{courses: []models.CourseListing{listing("Boxing")}}
	rules, _ := LoadRecommendationRules("")
	service := NewRecommendationService(lister, rules)

	got, err := service.Recommend(context.Background(), 180, 75)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if got.CourseIDs == nil || len(got.CourseIDs) != 0 {
		t.Fatalf("expected an empty list, got %#v", got.CourseIDs)
	}
}

func TestRecommendPropagatesCatalogueError(t *testing.T) {
	lister := &stubCourseLister{err: errors.New("db down")}
	rules, _ := LoadRecommendationRules("")
	service := NewRecommendationService(lister, rules)

	if _, err := service.Recommend(context.Background(), 170, 65); err == nil || err.Error() != "db down" {
		t.Fatalf("expected catalogue error, got %v", err)
	}
}

func TestLoadRecommendationRulesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `
bands:
  - category: light
    max_bmi: 20
    keywords: ["Stretch"]
  - category: heavy
    keywords: ["spin class"]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	rules, err := LoadRecommendationRules(path)
	if err != nil {
		t.Fatalf("LoadRecommendationRules: %v", err)
	}
	if len(rules.Bands) != 2 || rules.Bands[0].Keywords[0] != "stretch" {
		t.Fatalf("unexpected rules: %+v", rules)
	}

	if _, err := LoadRecommendationRules(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestParseRecommendationRulesRejectsBadTables(t *testing.T) {
	cases := map[string]string{
		"not yaml":       "bands: [",
		"no bands":       "bands: []",
		"missing max":    "bands:\n  - category: a\n    keywords: [x]\n  - category: b\n    max_bmi: 30\n    keywords: [y]\n",
		"out of order":   "bands:\n  - category: a\n    max_bmi: 30\n    keywords: [x]\n  - category: b\n    max_bmi: 20\n    keywords: [y]\n",
		"empty keywords": "bands:\n  - category: a\n    keywords: []\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseRecommendationRules([]byte(data)); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

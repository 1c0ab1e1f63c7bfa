package handlers

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/ttthanh1411/gym/internal/models"
	"github.com/ttthanh1411/gym/internal/repository"
	"github.com/ttthanh1411/gym/internal/services"
)

type stubCatalogService struct {
	err         error
	lastCourse  services.CourseInput
	lastContent []byte
	calls       int
}

func (s *stubCatalogService) ListServices(context.Context) ([]models.Service, error) {
	return nil, s.err
}

func (s *stubCatalogService) CreateService(_ context.Context, input repository.CreateServiceInput) (*models.Service, error) {
	s.calls++
	return &models.Service{ID: uuid.New(), Name: input.Name, Price: input.Price}, s.err
}

func (s *stubCatalogService) ListCourses(context.Context) ([]models.CourseListing, error) {
	return nil, s.err
}

func (s *stubCatalogService) GetCourse(_ context.Context, id uuid.UUID) (*models.CourseListing, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.CourseListing{WorkoutCourse: models.WorkoutCourse{ID: id}}, nil
}

func (s *stubCatalogService) CreateCourse(_ context.Context, input services.CourseInput) (*models.CourseListing, error) {
	s.calls++
	s.lastCourse = input
	if s.err != nil {
		return nil, s.err
	}
	return &models.CourseListing{WorkoutCourse: models.WorkoutCourse{ID: uuid.New(), Name: input.Name}}, nil
}

func (s *stubCatalogService) UpdateCourse(_ context.Context, id uuid.UUID, input services.CourseInput) (*models.CourseListing, error) {
	s.calls++
	s.lastCourse = input
	return &models.CourseListing{WorkoutCourse: models.WorkoutCourse{ID: id}}, s.err
}

func (s *stubCatalogService) DeleteCourse(context.Context, uuid.UUID) error {
	return s.err
}

func (s *stubCatalogService) UploadCourseImage(_ context.Context, id uuid.UUID, content []byte) (*models.CourseListing, error) {
	s.calls++
	s.lastContent = content
	if s.err != nil {
		return nil, s.err
	}
	return &models.CourseListing{WorkoutCourse: models.WorkoutCourse{ID: id, ImageURL: "https://cdn.example/courses/a.png"}}, nil
}

type stubStatusLister struct{}

func (stubStatusLister) List(context.Context) ([]models.Status, error) {
	return []models.Status{{ID: uuid.New(), Code: models.StatusPending}}, nil
}

func validCourseBody(extra string) string {
	return fmt.Sprintf(`{
		"name": "Morning Yoga",
		"trainer_id": %q,
		"service_id": %q,
		"duration_weeks": 8,
		"price": 120,
		"schedules": [%q],
		"start_date": "2030-07-01"%s
	}`, uuid.New(), uuid.New(), uuid.New(), extra)
}

func TestCreateCourseParsesRequest(t *testing.T) {
	service := &stubCatalogService{}
	app := newAuthedApp(uuid.NewString(), "admin")
	app.Post("/courses", NewCatalogHandler(service, stubStatusLister{}).CreateCourse)

	resp := doJSON(t, app, http.MethodPost, "/courses", validCourseBody(""), nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	got := service.lastCourse
	if got.Name != "Morning Yoga" || got.DurationWeeks != 8 || len(got.ScheduleIDs) != 1 {
		t.Fatalf("unexpected input %+v", got)
	}
	if got.StartDate == nil || got.StartDate.Format("2006-01-02") != "2030-07-01" || got.EndDate != nil {
		t.Fatalf("unexpected dates %v %v", got.StartDate, got.EndDate)
	}
}

func TestCreateCourseValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"duration_weeks":4}`},
		{"zero duration", `{"name":"Yoga","duration_weeks":0}`},
		{"negative price", `{"name":"Yoga","duration_weeks":4,"price":-1}`},
		{"bad trainer", `{"name":"Yoga","duration_weeks":4,"trainer_id":"7"}`},
		{"bad end date", validCourseBody(`, "end_date": "July"`)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service := &stubCatalogService{}
			app := newAuthedApp(uuid.NewString(), "admin")
			app.Post("/courses", NewCatalogHandler(service, stubStatusLister{}).CreateCourse)

			expectError(t, doJSON(t, app, http.MethodPost, "/courses", tc.body, nil), http.StatusBadRequest, "VALIDATION_FAILED")
			if service.calls != 0 {
				t.Fatal("expected service not to be called")
			}
		})
	}
}

func TestCreateServiceValidation(t *testing.T) {
	service := &stubCatalogService{}
	app := newAuthedApp(uuid.NewString(), "admin")
	app.Post("/services", NewCatalogHandler(service, stubStatusLister{}).CreateService)

	expectError(t, doJSON(t, app, http.MethodPost, "/services", `{"name":" ","price":10}`, nil), http.StatusBadRequest, "VALIDATION_FAILED")
	expectError(t, doJSON(t, app, http.MethodPost, "/services", `{"name":"PT","price":-10}`, nil), http.StatusBadRequest, "VALIDATION_FAILED")

	resp := doJSON(t, app, http.MethodPost, "/services", `{"name":"PT","price":10}`, nil)
	if resp.StatusCode != http.StatusCreated || service.calls != 1 {
		t.Fatalf("expected 201 with one call, got %d/%d", resp.StatusCode, service.calls)
	}
}

func TestDeleteCourseStillReferenced(t *testing.T) {
	app := newAuthedApp(uuid.NewString(), "admin")
	app.Delete("/courses/:id", NewCatalogHandler(&stubCatalogService{err: services.ErrConflict}, stubStatusLister{}).DeleteCourse)

	expectError(t, doJSON(t, app, http.MethodDelete, "/courses/"+uuid.NewString(), "", nil), http.StatusConflict, "CONFLICT")
}

func TestListStatuses(t *testing.T) {
	app := newAuthedApp(uuid.NewString(), "admin")
	app.Get("/statuses", NewCatalogHandler(&stubCatalogService{}, stubStatusLister{}).ListStatuses)

	var body []models.Status
	decodeBody(t, doJSON(t, app, http.MethodGet, "/statuses", "", nil), &body)
	if len(body) != 1 || body[0].Code != models.StatusPending {
		t.Fatalf("unexpected statuses %+v", body)
	}
}

func multipartImageRequest(t *testing.T, target string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if content != nil {
		part, err := writer.CreateFormFile("file", "cover.png")
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadCourseImage(t *testing.T) {
	service := &stubCatalogService{}
	courseID := uuid.New()
	app := newAuthedApp(uuid.NewString(), "admin")
	app.Post("/courses/:id/image", NewCatalogHandler(service, stubStatusLister{}).UploadCourseImage)

	content := []byte("\x89PNG\r\n\x1a\nimage-bytes")
	resp, err := app.Test(multipartImageRequest(t, "/courses/"+courseID.String()+"/image", content))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		ImageURL string               `json:"image_url"`
		Course   models.CourseListing `json:"course"`
	}
	decodeBody(t, resp, &body)
	if body.ImageURL != "https://cdn.example/courses/a.png" || body.Course.ID != courseID {
		t.Fatalf("unexpected body %+v", body)
	}
	if !bytes.Equal(service.lastContent, content) {
		t.Fatal("expected uploaded bytes to reach the service")
	}
}

func TestUploadCourseImageRequiresFile(t *testing.T) {
	service := &stubCatalogService{}
	app := newAuthedApp(uuid.NewString(), "admin")
	app.Post("/courses/:id/image", NewCatalogHandler(service, stubStatusLister{}).UploadCourseImage)

	resp, err := app.Test(multipartImageRequest(t, "/courses/"+uuid.NewString()+"/image", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	expectError(t, resp, http.StatusBadRequest, "VALIDATION_FAILED")
	if service.calls != 0 {
		t.Fatal("expected service not to be called")
	}
}

func TestUploadCourseImageStorageDisabled(t *testing.T) {
	app := newAuthedApp(uuid.NewString(), "admin")
	app.Post("/courses/:id/image", NewCatalogHandler(&stubCatalogService{err: services.ErrStorageUnavailable}, stubStatusLister{}).UploadCourseImage)

	resp, err := app.Test(multipartImageRequest(t, "/courses/"+uuid.NewString()+"/image", []byte("data")))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	expectError(t, resp, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE")
}

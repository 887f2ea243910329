package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/deptsite/deptcms/internal/api"
	"github.com/deptsite/deptcms/internal/core/filter"
	"github.com/deptsite/deptcms/internal/core/record"
	"github.com/deptsite/deptcms/internal/core/schema"
	"github.com/deptsite/deptcms/internal/core/validation"
	"github.com/deptsite/deptcms/internal/storage/memory"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	reg, err := schema.Default()
	if err != nil {
		t.Fatal(err)
	}
	store := memory.New()
	svc := record.NewService(reg, store, validation.NewValidator(), filter.NewCompiler(reg))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := api.NewRouter(svc, store, []string{"http://localhost:3000"}, logger).Setup(gin.TestMode)

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/", WithHTTPClient(srv.Client()))
}

func TestCourses_CRUD(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	courses := c.Courses()

	created, err := courses.Create(ctx, map[string]any{
		"courseCode": "cs101", "title": "Intro", "description": "Basics", "credits": 3, "semester": "Fall",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID() == "" || created["courseCode"] != "CS101" {
		t.Fatalf("Create() = %v", created)
	}

	got, err := courses.GetByID(ctx, created.ID())
	if err != nil || got["title"] != "Intro" {
		t.Fatalf("GetByID() = %v, %v", got, err)
	}

	updated, err := courses.Update(ctx, created.ID(), map[string]any{"title": "Intro to CS"})
	if err != nil || updated["title"] != "Intro to CS" {
		t.Fatalf("Update() = %v, %v", updated, err)
	}

	list, err := courses.GetAll(ctx, url.Values{"search": {"intro"}})
	if err != nil || len(list) != 1 {
		t.Fatalf("GetAll() = %v, %v", list, err)
	}

	deleted, err := courses.Delete(ctx, created.ID())
	if err != nil || deleted["isActive"] != false {
		t.Fatalf("Delete() = %v, %v", deleted, err)
	}
	list, _ = courses.GetAll(ctx, nil)
	if len(list) != 0 {
		t.Errorf("GetAll() after delete = %d records", len(list))
	}
}

func TestError_Envelope(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.Faculty().Create(ctx, map[string]any{"name": "Ada"})
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("Create() error = %v, want *Error", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "Validation error" || len(apiErr.Errors) == 0 {
		t.Errorf("error = %+v", apiErr)
	}

	_, err = c.Gallery().GetByID(ctx, "5b0c3a7e-1d2f-4e6a-8b9c-0a1b2c3d4e5f")
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound || apiErr.Message != "Image not found" {
		t.Errorf("GetByID() error = %v", err)
	}

	_, err = c.Courses().Like(ctx, "5b0c3a7e-1d2f-4e6a-8b9c-0a1b2c3d4e5f")
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Errorf("Like() on courses error = %v", err)
	}
}

func TestGallery_Extras(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	gallery := c.Gallery()

	img, err := gallery.Create(ctx, map[string]any{
		"title": "Hall", "imageUrl": "https://img.example/hall.jpg", "category": "Campus Life", "isFeatured": true,
	})
	if err != nil {
		t.Fatal(err)
	}

	liked, err := gallery.Like(ctx, img.ID())
	if err != nil || liked["likes"] != float64(1) {
		t.Fatalf("Like() = %v, %v", liked, err)
	}
	viewed, err := gallery.View(ctx, img.ID())
	if err != nil || viewed["views"] != float64(1) {
		t.Fatalf("View() = %v, %v", viewed, err)
	}

	featured, err := gallery.Featured(ctx)
	if err != nil || len(featured) != 1 {
		t.Errorf("Featured() = %v, %v", featured, err)
	}
	byCategory, err := gallery.ByCategory(ctx, "Campus Life")
	if err != nil || len(byCategory) != 1 {
		t.Errorf("ByCategory() = %v, %v", byCategory, err)
	}
}

func TestStudyMaterials_Grouped(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	materials := c.StudyMaterials()

	for _, m := range []map[string]any{
		{"title": "DS notes", "subject": "Data Structures", "year": "2nd Year", "semester": "Semester 3", "fileUrl": "https://f.example/ds.pdf"},
		{"title": "OS notes", "subject": "Operating Systems", "year": "2nd Year", "semester": "Semester 4", "fileUrl": "https://f.example/os.pdf"},
		{"title": "C notes", "subject": "Programming", "year": "1st Year", "semester": "Semester 1", "fileUrl": "https://f.example/c.pdf"},
	} {
		if _, err := materials.Create(ctx, m); err != nil {
			t.Fatal(err)
		}
	}

	groups, err := materials.Grouped(ctx)
	if err != nil {
		t.Fatalf("Grouped() error = %v", err)
	}
	if len(groups["2nd Year"]) != 2 || len(groups["2nd Year"]["Semester 3"]) != 1 || len(groups["1st Year"]["Semester 1"]) != 1 {
		t.Errorf("Grouped() = %v", groups)
	}
}

func TestEvents_Upcoming(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	if _, err := c.Events().Create(ctx, map[string]any{
		"title": "Past", "description": "d", "eventType": "Seminar", "eventDate": "2001-01-01",
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Events().Create(ctx, map[string]any{
		"title": "Future", "description": "d", "eventType": "Seminar", "eventDate": "2999-01-01",
	}); err != nil {
		t.Fatal(err)
	}

	upcoming, err := c.Events().Upcoming(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(upcoming) != 1 || upcoming[0]["title"] != "Future" {
		t.Errorf("Upcoming() = %v", upcoming)
	}
}

func TestNonJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Courses().GetAll(context.Background(), nil)
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadGateway || apiErr.Detail != "bad gateway" {
		t.Errorf("error = %v", err)
	}
}

func TestResourceNamesMatchServer(t *testing.T) {
	reg, err := schema.Default()
	if err != nil {
		t.Fatal(err)
	}
	names := []string{Faculty, Courses, Events, Gallery, Achievements, StudyMaterials, News}
	served := reg.Names()
	if len(served) != len(names) {
		t.Fatalf("server registers %v, client knows %v", served, names)
	}
	for _, name := range names {
		if _, err := reg.Get(name); err != nil {
			t.Errorf("client resource %q is not served: %v", name, err)
		}
	}
}

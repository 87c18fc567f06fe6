package profile

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fintrek-backend/catalog"
	"fintrek-backend/controllers/apitest"
	"fintrek-backend/controllers/authentication"
	"fintrek-backend/models"
	"fintrek-backend/models/dbtest"
	"fintrek-backend/services"
)

func newHandler(t *testing.T) *Handler {
	t.Helper()
	db := dbtest.Open(t)
	if err := catalog.Seed(context.Background(), db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	user := models.User{
		Base:      models.Base{ID: "u1", CreatedAt: time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)},
		Email:     "ada@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Name:      "Ada Lovelace",
		Provider:  models.ProviderLocal,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	content := catalog.NewDatabase(db)
	return &Handler{DB: db, Catalog: content, Gamification: &services.Gamification{DB: db, Catalog: content}}
}

func TestGetAndUpdateProfile(t *testing.T) {
	h := newHandler(t)
	rec := apitest.Call(t, h.GetProfile, http.MethodGet, "/profile", nil, "u1")
	apitest.Status(t, rec, http.StatusOK)
	if got := apitest.Decode[map[string]profilePayload](t, rec)["profile"]; got.Email != "ada@example.com" {
		t.Fatalf("profile = %+v", got)
	}
	apitest.Status(t, apitest.Call(t, h.GetProfile, http.MethodGet, "/profile", nil, "ghost"), http.StatusNotFound)

	rec = apitest.Call(t, h.UpdateProfile, http.MethodPut, "/profile", map[string]any{"firstName": " Augusta ", "avatarUrl": "https://img.example/a.png"}, "u1")
	apitest.Status(t, rec, http.StatusOK)
	got := apitest.Decode[map[string]profilePayload](t, rec)["profile"]
	if got.FirstName != "Augusta" || got.LastName != "Lovelace" || got.AvatarURL != "https://img.example/a.png" {
		t.Fatalf("updated = %+v", got)
	}

	apitest.Status(t, apitest.Call(t, h.UpdateProfile, http.MethodPut, "/profile", map[string]any{"name": "  "}, "u1"), http.StatusBadRequest)
}

func TestStats(t *testing.T) {
	h := newHandler(t)
	ctx := context.Background()
	if _, err := h.Gamification.Apply(ctx, services.Award{UserID: "u1", Points: 150, Activity: "Quiz", ActivityType: models.ActivityQuiz, LessonCompleted: true}, nil); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	results := []models.QuizResult{
		{UserID: "u1", QuizID: "q1", Score: 3, TotalQuestions: 5},
		{UserID: "u1", QuizID: "q2", Score: 4, TotalQuestions: 5},
	}
	if err := h.DB.Create(&results).Error; err != nil {
		t.Fatalf("results: %v", err)
	}

	rec := apitest.Call(t, h.Stats, http.MethodGet, "/profile/stats", nil, "u1")
	apitest.Status(t, rec, http.StatusOK)
	got := apitest.Decode[map[string]statsPayload](t, rec)["stats"]
	if got.JoinDate != "February 2026" || got.Name != "Ada Lovelace" {
		t.Fatalf("identity fields = %+v", got)
	}
	if got.TotalPoints != 150 || got.CurrentStreak != 1 || got.Level != "Beginner Trader" || got.LevelProgress != 15 {
		t.Fatalf("points fields = %+v", got)
	}
	if got.CompletedLessons != 1 || got.TotalLessons != 45 || got.TimeSpent != 1 {
		t.Fatalf("progress fields = %+v", got)
	}
	if got.QuizzesTaken != 2 || got.QuizAccuracy != 70 {
		t.Fatalf("quiz fields = %+v", got)
	}
}

func TestAchievementsAndActivity(t *testing.T) {
	h := newHandler(t)
	if _, err := h.Gamification.Apply(context.Background(), services.Award{UserID: "u1", Points: 25, Activity: "Completed lesson: Intro", ActivityType: models.ActivityLesson, LessonCompleted: true}, nil); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	rec := apitest.Call(t, h.Achievements, http.MethodGet, "/profile/achievements", nil, "u1")
	apitest.Status(t, rec, http.StatusOK)
	all := apitest.Decode[map[string][]achievementPayload](t, rec)["achievements"]
	earned := 0
	for _, a := range all {
		if a.Earned {
			earned++
			if a.Title != "First Steps" || a.EarnedAt == nil {
				t.Fatalf("earned = %+v", a)
			}
		}
	}
	if len(all) != 6 || earned != 1 {
		t.Fatalf("achievements = %d, earned = %d", len(all), earned)
	}

	rec = apitest.Call(t, h.Activity, http.MethodGet, "/profile/activity", nil, "u1")
	apitest.Status(t, rec, http.StatusOK)
	if activity := apitest.Decode[map[string][]models.UserActivity](t, rec)["activity"]; len(activity) != 2 {
		t.Fatalf("activity = %+v", activity)
	}
}

func TestDeleteProfileKeepsDiscussions(t *testing.T) {
	h := newHandler(t)
	ctx := context.Background()
	if _, err := h.Gamification.Apply(ctx, services.Award{UserID: "u1", Points: 10, Activity: "x", ActivityType: models.ActivityQuiz}, nil); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	post := models.Discussion{UserID: "u1", Title: "Hello", Content: "World", AuthorName: "Ada Lovelace"}
	if err := h.DB.Create(&post).Error; err != nil {
		t.Fatalf("discussion: %v", err)
	}

	apitest.Status(t, apitest.Call(t, h.DeleteProfile, http.MethodDelete, "/profile", nil, "u1"), http.StatusOK)

	for _, m := range []any{&models.User{}, &models.Points{}, &models.Progress{}, &models.UserActivity{}} {
		var n int64
		q := h.DB.Model(m)
		if _, ok := m.(*models.User); ok {
			q = q.Where("id = ?", "u1")
		} else {
			q = q.Where("user_id = ?", "u1")
		}
		q.Count(&n)
		if n != 0 {
			t.Fatalf("%T rows left = %d", m, n)
		}
	}
	var kept models.Discussion
	if err := h.DB.First(&kept, "id = ?", post.ID).Error; err != nil {
		t.Fatalf("discussion removed: %v", err)
	}
	if kept.AuthorName != "Ada Lovelace" {
		t.Fatalf("author snapshot = %q", kept.AuthorName)
	}
}

type fakeAvatars struct {
	name, contentType string
	size              int
	err               error
}

func (f *fakeAvatars) Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.name, f.contentType, f.size = name, contentType, len(data)
	return "https://drive.example/" + name, nil
}

func uploadRequest(t *testing.T, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	fw.Write(data)
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/profile/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req.WithContext(authentication.WithIdentity(req.Context(), authentication.Identity{UserID: "u1"}))
}

func TestUploadAvatar(t *testing.T) {
	h := newHandler(t)
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

	rec := httptest.NewRecorder()
	h.UploadAvatar(rec, uploadRequest(t, "me.png", png))
	apitest.Status(t, rec, http.StatusServiceUnavailable)

	store := &fakeAvatars{}
	h.Avatars = store
	rec = httptest.NewRecorder()
	h.UploadAvatar(rec, uploadRequest(t, "me.png", png))
	apitest.Status(t, rec, http.StatusOK)
	if store.name != "avatar-u1.png" || store.contentType != "image/png" || store.size != len(png) {
		t.Fatalf("upload = %+v", store)
	}
	var user models.User
	h.DB.First(&user, "id = ?", "u1")
	if user.AvatarURL != "https://drive.example/avatar-u1.png" {
		t.Fatalf("avatar url = %q", user.AvatarURL)
	}

	rec = httptest.NewRecorder()
	h.UploadAvatar(rec, uploadRequest(t, "notes.txt", []byte("just text")))
	apitest.Status(t, rec, http.StatusBadRequest)

	store.err = errors.New("drive down")
	rec = httptest.NewRecorder()
	h.UploadAvatar(rec, uploadRequest(t, "me.png", png))
	apitest.Status(t, rec, http.StatusBadGateway)
}

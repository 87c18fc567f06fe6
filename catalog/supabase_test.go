package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// fakePostgREST serves fixed rows per table and honours id/module_id equality filters.
func fakePostgREST(t *testing.T, tables map[string][]map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")
		rows, ok := tables[table]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":"42P01","message":"relation does not exist"}`))
			return
		}
		out := []map[string]any{}
		for _, row := range rows {
			if !matches(row, r.URL.Query()) {
				continue
			}
			out = append(out, row)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func matches(row map[string]any, query map[string][]string) bool {
	for _, col := range []string{"id", "module_id", "quiz_id"} {
		filter := ""
		if vals := query[col]; len(vals) > 0 {
			filter = vals[0]
		}
		if filter == "" {
			continue
		}
		want := strings.TrimPrefix(filter, "eq.")
		got, _ := row[col].(string)
		if got != want {
			return false
		}
	}
	return true
}

func TestSupabaseConvertsRows(t *testing.T) {
	srv := fakePostgREST(t, map[string][]map[string]any{
		"learning_modules": {
			{"id": "m1", "title": "Budgeting", "lessons": 5, "estimated_time": "2h", "topics": []string{"saving"}, "order_index": 1, "is_unlocked": true, "created_at": "2024-01-02T03:04:05.123456+00:00"},
		},
		"quizzes": {
			{"id": "q1", "title": "Daily", "is_daily": true, "points_per_question": 0, "module_id": nil},
		},
		"achievements": {
			{"id": "a1", "title": "First Steps", "points_required": 100, "streak_required": nil},
		},
	})

	c, err := NewSupabase(srv.URL, "anon-key")
	if err != nil {
		t.Fatalf("NewSupabase: %v", err)
	}
	ctx := context.Background()

	m, err := c.GetModule(ctx, "m1")
	if err != nil {
		t.Fatalf("GetModule: %v", err)
	}
	if m.Title != "Budgeting" || m.EstimatedTime != "2h" || !m.IsUnlocked || len(m.Topics) != 1 || m.CreatedAt.Year() != 2024 {
		t.Fatalf("module = %+v", m)
	}

	quiz, err := c.GetQuiz(ctx, "q1")
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	if quiz.PointsPerQuestion != 50 || quiz.ModuleID != nil {
		t.Fatalf("quiz = %+v, want default points and no module", quiz)
	}

	achievements, err := c.ListAchievements(ctx)
	if err != nil {
		t.Fatalf("ListAchievements: %v", err)
	}
	if len(achievements) != 1 || achievements[0].PointsRequired == nil || *achievements[0].PointsRequired != 100 || achievements[0].StreakRequired != nil {
		t.Fatalf("achievements = %+v", achievements)
	}
}

func TestSupabaseMissingRow(t *testing.T) {
	srv := fakePostgREST(t, map[string][]map[string]any{"lessons": {}})
	c, err := NewSupabase(srv.URL, "anon-key")
	if err != nil {
		t.Fatalf("NewSupabase: %v", err)
	}
	if _, err := c.GetLesson(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetLesson err = %v, want ErrNotFound", err)
	}
	if _, err := c.ListModules(context.Background()); err == nil {
		t.Fatalf("expected error for unknown table")
	}
}

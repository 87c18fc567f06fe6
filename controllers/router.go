// Package controllers wires the HTTP handlers into the FinTrek API.
package controllers

import (
	"net/http"

	"fintrek-backend/controllers/analytics"
	"fintrek-backend/controllers/assistant"
	"fintrek-backend/controllers/authentication"
	"fintrek-backend/controllers/community"
	"fintrek-backend/controllers/gamification"
	"fintrek-backend/controllers/httpCors"
	"fintrek-backend/controllers/learning"
	"fintrek-backend/controllers/notifications"
	"fintrek-backend/controllers/profile"
	"fintrek-backend/controllers/quizzes"
	"fintrek-backend/controllers/respond"
	"fintrek-backend/controllers/transactions"
)

type Server struct {
	Version        string
	AllowedOrigins []string

	Guard         *authentication.Guard
	Auth          *authentication.Handler
	Profile       *profile.Handler
	Transactions  *transactions.Handler
	Analytics     *analytics.Handler
	Learning      *learning.Handler
	Quizzes       *quizzes.Handler
	Gamification  *gamification.Handler
	Community     *community.Handler
	Notifications *notifications.Handler
	Assistant     *assistant.Handler
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{
		"message": "FinTrek Backend is running",
		"version": s.Version,
		"status":  "healthy",
	})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	respond.Error(w, http.StatusNotFound, "Endpoint not found")
}

// Routes builds the API handler with logging, panic recovery and CORS applied.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	auth := s.Guard.Require
	optional := s.Guard.Optional

	mux.HandleFunc("GET /{$}", s.home)

	mux.HandleFunc("POST /auth/signup", s.Auth.Signup)
	mux.HandleFunc("POST /auth/login", s.Auth.Login)
	mux.HandleFunc("POST /auth/refresh", s.Auth.Refresh)
	mux.HandleFunc("POST /auth/logout", auth(s.Auth.Logout))
	mux.HandleFunc("POST /auth/change-password", auth(s.Auth.ChangePassword))
	mux.HandleFunc("GET /auth/google/login", s.Auth.HandleGoogleLogin)
	mux.HandleFunc("GET /auth/google/callback", s.Auth.HandleGoogleCallback)

	mux.HandleFunc("GET /profile", auth(s.Profile.GetProfile))
	mux.HandleFunc("PUT /profile", auth(s.Profile.UpdateProfile))
	mux.HandleFunc("DELETE /profile", auth(s.Profile.DeleteProfile))
	mux.HandleFunc("GET /profile/stats", auth(s.Profile.Stats))
	mux.HandleFunc("GET /profile/achievements", auth(s.Profile.Achievements))
	mux.HandleFunc("GET /profile/activity", auth(s.Profile.Activity))
	mux.HandleFunc("POST /profile/avatar", auth(s.Profile.UploadAvatar))

	mux.HandleFunc("POST /transactions", auth(s.Transactions.CreateTransaction))
	mux.HandleFunc("GET /transactions", auth(s.Transactions.ListTransactions))
	mux.HandleFunc("GET /transactions/{id}", auth(s.Transactions.GetTransaction))
	mux.HandleFunc("PUT /transactions/{id}", auth(s.Transactions.UpdateTransaction))
	mux.HandleFunc("DELETE /transactions/{id}", auth(s.Transactions.DeleteTransaction))

	mux.HandleFunc("GET /analytics/summary", auth(s.Analytics.Summary))
	mux.HandleFunc("GET /analytics/category", auth(s.Analytics.Category))
	mux.HandleFunc("GET /analytics/trends", auth(s.Analytics.Trends))

	mux.HandleFunc("GET /modules", optional(s.Learning.ListModules))
	mux.HandleFunc("GET /modules/{id}", optional(s.Learning.GetModule))
	mux.HandleFunc("POST /lessons/{id}/complete", auth(s.Learning.CompleteLesson))
	mux.HandleFunc("GET /progress", auth(s.Learning.GetProgress))
	mux.HandleFunc("GET /progress/overall", auth(s.Learning.OverallProgress))

	mux.HandleFunc("GET /quizzes", s.Quizzes.ListQuizzes)
	mux.HandleFunc("GET /quizzes/daily", s.Quizzes.DailyQuiz)
	mux.HandleFunc("GET /quizzes/results", auth(s.Quizzes.ListResults))
	mux.HandleFunc("GET /quizzes/{id}", s.Quizzes.GetQuiz)
	mux.HandleFunc("POST /quizzes/{id}/submit", auth(s.Quizzes.SubmitQuiz))

	mux.HandleFunc("GET /points", auth(s.Gamification.GetPoints))
	mux.HandleFunc("GET /leaderboard", optional(s.Gamification.Leaderboard))

	mux.HandleFunc("GET /discussions", optional(s.Community.ListDiscussions))
	mux.HandleFunc("POST /discussions", auth(s.Community.CreateDiscussion))
	mux.HandleFunc("GET /discussions/{id}", optional(s.Community.GetDiscussion))
	mux.HandleFunc("PUT /discussions/{id}", auth(s.Community.UpdateDiscussion))
	mux.HandleFunc("DELETE /discussions/{id}", auth(s.Community.DeleteDiscussion))
	mux.HandleFunc("POST /discussions/{id}/replies", auth(s.Community.CreateReply))
	mux.HandleFunc("PUT /replies/{id}", auth(s.Community.UpdateReply))
	mux.HandleFunc("DELETE /replies/{id}", auth(s.Community.DeleteReply))
	mux.HandleFunc("POST /discussions/{id}/like", auth(s.Community.Like))
	mux.HandleFunc("DELETE /discussions/{id}/like", auth(s.Community.Unlike))
	mux.HandleFunc("GET /community/stats", s.Community.Stats)

	mux.HandleFunc("GET /notifications", auth(s.Notifications.ListNotifications))
	mux.HandleFunc("POST /notifications/subscriptions", auth(s.Notifications.Subscribe))
	mux.HandleFunc("DELETE /notifications/subscriptions", auth(s.Notifications.Unsubscribe))
	mux.HandleFunc("POST /notifications/{id}/read", auth(s.Notifications.MarkRead))
	mux.HandleFunc("DELETE /notifications/{id}", auth(s.Notifications.DeleteNotification))

	mux.HandleFunc("POST /assistant/chat", auth(s.Assistant.Chat))

	mux.HandleFunc("/", notFound)

	var h http.Handler = mux
	h = recoverPanics(h)
	h = logRequests(h)
	h = httpCors.CorsSettings(s.AllowedOrigins).Handler(h)
	return h
}

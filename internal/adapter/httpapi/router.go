package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/kyoshi/internal/repository"
	"github.com/eslsoft/kyoshi/internal/usecase"
)

// NewRouter assembles the HTTP surface of the tutor engine.
func NewRouter(
	tutor usecase.TutorUsecase,
	scheduler usecase.SchedulerUsecase,
	sessions repository.SessionRepository,
	logger *logrus.Logger,
) http.Handler {
	h := &handler{tutor: tutor, scheduler: scheduler, sessions: sessions, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-Id"},
	}).Handler)

	r.Get("/healthz", h.health)
	r.Route("/api/v1/chats/{chatID}", func(r chi.Router) {
		r.Post("/lessons", h.startLesson)
		r.Post("/messages", h.postMessage)
		r.Get("/checklist", h.getChecklist)
		r.Get("/mastery", h.getMastery)
		r.Get("/words/next", h.getNextWords)
		r.Get("/words/review", h.getReviewWords)
	})
	return r
}

// requestLogger emits one structured line per request.
func requestLogger(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			next.ServeHTTP(ww, req)

			entry := logger.WithFields(logrus.Fields{
				"method":     req.Method,
				"path":       req.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
				"request_id": middleware.GetReqID(req.Context()),
			})
			if ww.Status() >= http.StatusInternalServerError {
				entry.Error("request completed")
				return
			}
			entry.Info("request completed")
		})
	}
}

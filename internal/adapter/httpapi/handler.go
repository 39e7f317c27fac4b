package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/kyoshi/internal/entity"
	"github.com/eslsoft/kyoshi/internal/repository"
	"github.com/eslsoft/kyoshi/internal/usecase"
)

type handler struct {
	tutor     usecase.TutorUsecase
	scheduler usecase.SchedulerUsecase
	sessions  repository.SessionRepository
	logger    *logrus.Logger
}

type messageRequest struct {
	Message string `json:"message"`
	// TurnID deduplicates at-least-once delivery from chat transports.
	// Empty ids get a fresh UUID and are never treated as duplicates.
	TurnID string `json:"turn_id,omitempty"`
}

type turnResponse struct {
	Reply          string `json:"reply"`
	LessonComplete bool   `json:"lesson_complete"`
	TurnID         string `json:"turn_id"`
	Duplicate      bool   `json:"duplicate,omitempty"`
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) startLesson(w http.ResponseWriter, req *http.Request) {
	chatID := chi.URLParam(req, "chatID")

	result, err := h.tutor.StartLesson(req.Context(), chatID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, turnResponse{Reply: result.Reply, LessonComplete: result.LessonComplete})
}

func (h *handler) postMessage(w http.ResponseWriter, req *http.Request) {
	chatID := chi.URLParam(req, "chatID")

	var body messageRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	turnID := body.TurnID
	if turnID == "" {
		turnID = uuid.NewString()
	} else {
		seen, err := h.sessions.MarkTurn(req.Context(), chatID, turnID)
		if err != nil {
			h.writeError(w, err)
			return
		}
		if seen {
			writeJSON(w, http.StatusOK, turnResponse{TurnID: turnID, Duplicate: true})
			return
		}
	}

	result, err := h.tutor.HandleMessage(req.Context(), chatID, body.Message)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, turnResponse{
		Reply:          result.Reply,
		LessonComplete: result.LessonComplete,
		TurnID:         turnID,
	})
}

func (h *handler) getChecklist(w http.ResponseWriter, req *http.Request) {
	chatID := chi.URLParam(req, "chatID")

	checklist, err := h.tutor.Checklist(req.Context(), chatID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, checklist)
}

func (h *handler) getMastery(w http.ResponseWriter, req *http.Request) {
	chatID := chi.URLParam(req, "chatID")

	items, err := h.tutor.MasteryOverview(req.Context(), chatID, pageParam(req))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *handler) getNextWords(w http.ResponseWriter, req *http.Request) {
	chatID := chi.URLParam(req, "chatID")

	words, err := h.scheduler.NextWords(req.Context(), chatID, countParam(req, 5))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"words": words})
}

func (h *handler) getReviewWords(w http.ResponseWriter, req *http.Request) {
	chatID := chi.URLParam(req, "chatID")

	words, err := h.scheduler.ReviewWords(req.Context(), chatID, countParam(req, 5))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"words": words})
}

// pageParam reads ?page and ?page_size; out-of-range values are left for
// Pagination.Normalize to clamp at the repository edge.
func pageParam(req *http.Request) repository.Pagination {
	var page repository.Pagination
	if n, err := strconv.Atoi(req.URL.Query().Get("page")); err == nil {
		page.PageNo = int32(n)
	}
	if n, err := strconv.Atoi(req.URL.Query().Get("page_size")); err == nil {
		page.PageSize = int32(n)
	}
	return page
}

func countParam(req *http.Request, fallback int) int {
	raw := req.URL.Query().Get("n")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	if n > 50 {
		return 50
	}
	return n
}

func (h *handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrInvalidChatID), errors.Is(err, entity.ErrEmptyStudentInput):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, entity.ErrNoChecklist), errors.Is(err, entity.ErrNoActiveLesson),
		errors.Is(err, entity.ErrDayNotFound), errors.Is(err, entity.ErrItemNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, entity.ErrLessonActive):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	default:
		h.logger.WithError(err).Error("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

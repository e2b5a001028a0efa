package http

import (
	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-learn/internal/progress"
)

func CompleteLessonHandler(l *progress.Ledger, log *zap.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		p, err := l.MarkLessonComplete(r.Context(), actor(r), chi.URLParam(r, "lessonID"))
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, p)
	}
}

func UncompleteLessonHandler(l *progress.Ledger, log *zap.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if err := l.MarkLessonIncomplete(r.Context(), actor(r), chi.URLParam(r, "lessonID")); err != nil {
			writeError(w, log, err)
			return
		}
		w.WriteHeader(nethttp.StatusNoContent)
	}
}

func CourseProgressHandler(l *progress.Ledger, log *zap.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		p, err := l.GetCourseProgress(r.Context(), actor(r), chi.URLParam(r, "courseID"))
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, p)
	}
}

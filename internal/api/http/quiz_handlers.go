package http

import (
	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-learn/internal/assessment"
	"github.com/mind-engage/mindengage-learn/internal/progress"
	"github.com/mind-engage/mindengage-learn/internal/quiz"
)

// Read handlers sanitize per caller; anonymous callers get the public view.

func ListQuizzesHandler(svc *quiz.Service, log *zap.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		views, err := svc.List(r.Context(), chi.URLParam(r, "courseID"), optionalActor(r))
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, views)
	}
}

func GetQuizHandler(svc *quiz.Service, log *zap.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		v, err := svc.GetView(r.Context(), chi.URLParam(r, "courseID"), chi.URLParam(r, "quizID"), optionalActor(r))
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, v)
	}
}

func CreateQuizHandler(svc *quiz.Service, log *zap.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var in quiz.CreateQuizInput
		if !decode(w, r, &in) {
			return
		}
		q, err := svc.Create(r.Context(), actor(r), chi.URLParam(r, "courseID"), in)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, nethttp.StatusCreated, q)
	}
}

// PATCH replaces every question when "questions" is present.
func UpdateQuizHandler(svc *quiz.Service, log *zap.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var in quiz.UpdateQuizInput
		if !decode(w, r, &in) {
			return
		}
		q, err := svc.Update(r.Context(), actor(r), chi.URLParam(r, "courseID"), chi.URLParam(r, "quizID"), in)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, q)
	}
}

func DeleteQuizHandler(svc *quiz.Service, log *zap.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if err := svc.Delete(r.Context(), actor(r), chi.URLParam(r, "courseID"), chi.URLParam(r, "quizID")); err != nil {
			writeError(w, log, err)
			return
		}
		w.WriteHeader(nethttp.StatusNoContent)
	}
}

// POST /courses/{courseID}/quizzes/{quizID}/submit  { "answers": { "<question id>": "<option id>" } }
func SubmitQuizHandler(o *assessment.Orchestrator, log *zap.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var req struct {
			Answers map[string]string `json:"answers"`
		}
		if !decode(w, r, &req) {
			return
		}
		res, err := o.SubmitQuiz(r.Context(), chi.URLParam(r, "courseID"), chi.URLParam(r, "quizID"), actor(r), req.Answers)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, res)
	}
}

// ListSubmissionsHandler shows the caller's own attempts. The quiz must
// belong to the course in the path.
func ListSubmissionsHandler(quizzes *quiz.Service, ledger *progress.Ledger, log *zap.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		q, err := quizzes.Get(r.Context(), chi.URLParam(r, "courseID"), chi.URLParam(r, "quizID"))
		if err != nil {
			writeError(w, log, err)
			return
		}
		subs, err := ledger.ListSubmissions(r.Context(), actor(r), q.ID)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, subs)
	}
}

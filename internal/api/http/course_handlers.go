package http

import (
	nethttp "net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-learn/internal/course"
)

// GET /courses?page=&limit=
func ListCoursesHandler(svc *course.Service, log *zap.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		out, err := svc.List(r.Context(), page, limit)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

func GetCourseHandler(svc *course.Service, log *zap.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		c, err := svc.Get(r.Context(), chi.URLParam(r, "courseID"))
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, c)
	}
}

func CreateCourseHandler(svc *course.Service, log *zap.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var in course.CreateCourseInput
		if !decode(w, r, &in) {
			return
		}
		c, err := svc.Create(r.Context(), actor(r), in)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, nethttp.StatusCreated, c)
	}
}

func UpdateCourseHandler(svc *course.Service, log *zap.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var in course.UpdateCourseInput
		if !decode(w, r, &in) {
			return
		}
		c, err := svc.Update(r.Context(), actor(r), chi.URLParam(r, "courseID"), in)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, c)
	}
}

func DeleteCourseHandler(svc *course.Service, log *zap.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if err := svc.Delete(r.Context(), actor(r), chi.URLParam(r, "courseID")); err != nil {
			writeError(w, log, err)
			return
		}
		w.WriteHeader(nethttp.StatusNoContent)
	}
}

func EnrollHandler(svc *course.Service, log *zap.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if err := svc.Enroll(r.Context(), actor(r), chi.URLParam(r, "courseID")); err != nil {
			writeError(w, log, err)
			return
		}
		w.WriteHeader(nethttp.StatusNoContent)
	}
}

func UnenrollHandler(svc *course.Service, log *zap.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if err := svc.Unenroll(r.Context(), actor(r), chi.URLParam(r, "courseID")); err != nil {
			writeError(w, log, err)
			return
		}
		w.WriteHeader(nethttp.StatusNoContent)
	}
}

// ---- lessons ----

func ListLessonsHandler(svc *course.Service, log *zap.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		ls, err := svc.ListLessons(r.Context(), chi.URLParam(r, "courseID"))
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, ls)
	}
}

func GetLessonHandler(svc *course.Service, log *zap.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		l, err := svc.GetLesson(r.Context(), chi.URLParam(r, "courseID"), chi.URLParam(r, "lessonID"))
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, l)
	}
}

func CreateLessonHandler(svc *course.Service, log *zap.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var in course.CreateLessonInput
		if !decode(w, r, &in) {
			return
		}
		l, err := svc.CreateLesson(r.Context(), actor(r), chi.URLParam(r, "courseID"), in)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, nethttp.StatusCreated, l)
	}
}

func UpdateLessonHandler(svc *course.Service, log *zap.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var in course.UpdateLessonInput
		if !decode(w, r, &in) {
			return
		}
		l, err := svc.UpdateLesson(r.Context(), actor(r), chi.URLParam(r, "courseID"), chi.URLParam(r, "lessonID"), in)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, l)
	}
}

func DeleteLessonHandler(svc *course.Service, log *zap.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if err := svc.DeleteLesson(r.Context(), actor(r), chi.URLParam(r, "courseID"), chi.URLParam(r, "lessonID")); err != nil {
			writeError(w, log, err)
			return
		}
		w.WriteHeader(nethttp.StatusNoContent)
	}
}

package http

import (
	"database/sql"
	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-learn/internal/assessment"
	auth "github.com/mind-engage/mindengage-learn/internal/auth/middleware"
	"github.com/mind-engage/mindengage-learn/internal/course"
	"github.com/mind-engage/mindengage-learn/internal/progress"
	"github.com/mind-engage/mindengage-learn/internal/quiz"
	"github.com/mind-engage/mindengage-learn/internal/rbac"
)

type Deps struct {
	DB   *sql.DB
	Auth *auth.AuthService
	Log  *zap.Logger

	EnableLocalAuth bool
	RoleFromDB      bool
	// ClaimFallback keeps the token role when the user row is missing.
	ClaimFallback bool

	// Policy guards the write routes; nil means the built-in role table.
	Policy *rbac.Policy

	Courses    *course.Service
	Quizzes    *quiz.Service
	Ledger     *progress.Ledger
	Assessment *assessment.Orchestrator
}

// Mount registers every API route on r. Global middleware (request ids,
// logging, CORS, timeouts) is the caller's business.
func Mount(r chi.Router, d Deps) {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	policy := d.Policy
	if policy == nil {
		policy = rbac.NewPolicy(nil)
	}
	identify := func(base func(nethttp.Handler) nethttp.Handler) []func(nethttp.Handler) nethttp.Handler {
		mws := []func(nethttp.Handler) nethttp.Handler{base}
		if d.RoleFromDB {
			mws = append(mws, auth.AttachRoleFromDB(d.DB, d.ClaimFallback))
		}
		return mws
	}

	r.Get("/healthz", func(w nethttp.ResponseWriter, r *nethttp.Request) { w.WriteHeader(nethttp.StatusOK) })
	r.Get("/readyz", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if err := d.DB.PingContext(r.Context()); err != nil {
			nethttp.Error(w, "db unavailable", nethttp.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(nethttp.StatusOK)
	})

	if d.EnableLocalAuth {
		r.Post("/auth/login", auth.LoginHandler(d.Auth, d.DB, log))
	}

	// Reads: anonymous allowed, quizzes sanitized per caller.
	r.Group(func(pub chi.Router) {
		pub.Use(identify(auth.OptionalJWT(d.Auth))...)

		pub.Get("/courses", ListCoursesHandler(d.Courses, log))
		pub.Get("/courses/{courseID}", GetCourseHandler(d.Courses, log))
		pub.Get("/courses/{courseID}/lessons", ListLessonsHandler(d.Courses, log))
		pub.Get("/courses/{courseID}/lessons/{lessonID}", GetLessonHandler(d.Courses, log))
		pub.Get("/courses/{courseID}/quizzes", ListQuizzesHandler(d.Quizzes, log))
		pub.Get("/courses/{courseID}/quizzes/{quizID}", GetQuizHandler(d.Quizzes, log))
	})

	// Writes: JWT -> actor in context -> role guard; ownership is checked by the services.
	r.Group(func(pr chi.Router) {
		pr.Use(identify(auth.JWTMiddleware(d.Auth))...)

		pr.With(policy.Require(rbac.ActionCourseCreate)).
			Post("/courses", CreateCourseHandler(d.Courses, log))
		pr.Patch("/courses/{courseID}", UpdateCourseHandler(d.Courses, log))
		pr.Delete("/courses/{courseID}", DeleteCourseHandler(d.Courses, log))

		pr.With(policy.Require(rbac.ActionCourseEnroll)).
			Post("/courses/{courseID}/enroll", EnrollHandler(d.Courses, log))
		pr.With(policy.Require(rbac.ActionCourseEnroll)).
			Post("/courses/{courseID}/unenroll", UnenrollHandler(d.Courses, log))

		pr.Post("/courses/{courseID}/lessons", CreateLessonHandler(d.Courses, log))
		pr.Patch("/courses/{courseID}/lessons/{lessonID}", UpdateLessonHandler(d.Courses, log))
		pr.Delete("/courses/{courseID}/lessons/{lessonID}", DeleteLessonHandler(d.Courses, log))

		pr.Post("/courses/{courseID}/quizzes", CreateQuizHandler(d.Quizzes, log))
		pr.Patch("/courses/{courseID}/quizzes/{quizID}", UpdateQuizHandler(d.Quizzes, log))
		pr.Delete("/courses/{courseID}/quizzes/{quizID}", DeleteQuizHandler(d.Quizzes, log))

		pr.With(policy.Require(rbac.ActionQuizSubmit)).
			Post("/courses/{courseID}/quizzes/{quizID}/submit", SubmitQuizHandler(d.Assessment, log))
		pr.With(policy.Require(rbac.ActionProgressView)).
			Get("/courses/{courseID}/quizzes/{quizID}/submissions", ListSubmissionsHandler(d.Quizzes, d.Ledger, log))

		pr.With(policy.Require(rbac.ActionProgressWrite)).
			Post("/progress/lessons/{lessonID}/complete", CompleteLessonHandler(d.Ledger, log))
		pr.With(policy.Require(rbac.ActionProgressWrite)).
			Delete("/progress/lessons/{lessonID}/complete", UncompleteLessonHandler(d.Ledger, log))
		pr.With(policy.Require(rbac.ActionProgressView)).
			Get("/progress/courses/{courseID}", CourseProgressHandler(d.Ledger, log))
	})
}

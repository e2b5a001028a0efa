package rbac

type Action string

const (
	ActionCourseCreate Action = "course:create"
	ActionCourseUpdate Action = "course:update"
	ActionCourseDelete Action = "course:delete"
	ActionCourseEnroll Action = "course:enroll"

	ActionLessonCreate Action = "lesson:create"
	ActionLessonUpdate Action = "lesson:update"
	ActionLessonDelete Action = "lesson:delete"

	ActionQuizCreate Action = "quiz:create"
	ActionQuizUpdate Action = "quiz:update"
	ActionQuizDelete Action = "quiz:delete"
	ActionQuizSubmit Action = "quiz:submit"

	ActionProgressWrite Action = "progress:write"
	ActionProgressView  Action = "progress:view"
)

// OwnerScoped lists actions decided by course ownership rather than by role.
// Ownership always resolves to the course, also for nested lessons and quizzes.
var OwnerScoped = map[Action]bool{
	ActionCourseUpdate: true,
	ActionCourseDelete: true,
	ActionLessonCreate: true,
	ActionLessonUpdate: true,
	ActionLessonDelete: true,
	ActionQuizCreate:   true,
	ActionQuizUpdate:   true,
	ActionQuizDelete:   true,
}

// RolePermissions covers the role-scoped actions.
var RolePermissions = map[Role][]string{
	RoleStudent: {
		string(ActionCourseEnroll),
		string(ActionQuizSubmit),
		"progress:*",
	},
	RoleTeacher: {
		string(ActionCourseCreate),
		string(ActionCourseEnroll),
		string(ActionQuizSubmit),
		"progress:*",
	},
	RoleAdmin: {
		"*",
	},
}

package quiz

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/mind-engage/mindengage-learn/internal/rbac"
)

func sampleQuiz() Quiz {
	owner := "t-1"
	return Quiz{
		ID:       "qz-1",
		CourseID: "c-1",
		Title:    "basics",
		OwnerID:  &owner,
		Questions: []Question{{
			ID: "q1", Text: "2+2?", Points: 1,
			Options: []Option{{ID: "a", Text: "4", IsCorrect: true}, {ID: "b", Text: "5"}},
		}},
	}
}

func TestSanitize_ByCaller(t *testing.T) {
	cases := []struct {
		name  string
		actor *rbac.Actor
		full  bool
	}{
		{"anonymous", nil, false},
		{"student", &rbac.Actor{ID: "s-1", Role: rbac.RoleStudent}, false},
		{"other teacher", &rbac.Actor{ID: "t-2", Role: rbac.RoleTeacher}, false},
		{"owner", &rbac.Actor{ID: "t-1", Role: rbac.RoleTeacher}, true},
		{"admin", &rbac.Actor{ID: "a-1", Role: rbac.RoleAdmin}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := Sanitize(sampleQuiz(), tc.actor)
			b, err := json.Marshal(v)
			if err != nil {
				t.Fatal(err)
			}
			has := strings.Contains(string(b), `"is_correct"`)
			if has != tc.full {
				t.Fatalf("is_correct present=%v, want %v: %s", has, tc.full, b)
			}
			if v.QuizID() != "qz-1" {
				t.Fatalf("id lost: %s", v.QuizID())
			}
			if strings.Contains(string(b), "t-1") {
				t.Fatalf("owner id leaked: %s", b)
			}
		})
	}
}

func TestSanitize_DoesNotMutate(t *testing.T) {
	q := sampleQuiz()
	p := Public(q)
	if !q.Questions[0].Options[0].IsCorrect {
		t.Fatal("source quiz mutated")
	}
	if len(p.Questions) != 1 || len(p.Questions[0].Options) != 2 || p.Questions[0].Points != 1 {
		t.Fatalf("unexpected public view %+v", p)
	}
}

func TestSanitize_OwnerlessQuizHidesKeyFromTeachers(t *testing.T) {
	q := sampleQuiz()
	q.OwnerID = nil
	if _, ok := Sanitize(q, &rbac.Actor{ID: "t-1", Role: rbac.RoleTeacher}).(PublicQuiz); !ok {
		t.Fatal("expected public view")
	}
}

package quiz

import (
	"time"

	"github.com/mind-engage/mindengage-learn/internal/rbac"
)

// View is what callers receive: the full Quiz for its owner or an admin,
// a PublicQuiz for everyone else.
type View interface {
	QuizID() string
}

type PublicQuiz struct {
	ID        string           `json:"id"`
	CourseID  string           `json:"course_id"`
	Title     string           `json:"title"`
	Questions []PublicQuestion `json:"questions"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type PublicQuestion struct {
	ID      string         `json:"id"`
	Text    string         `json:"text"`
	Points  int            `json:"points"`
	Options []PublicOption `json:"options"`
}

// PublicOption has no correctness field at all.
type PublicOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func (q Quiz) QuizID() string       { return q.ID }
func (q PublicQuiz) QuizID() string { return q.ID }

// Sanitize never touches storage. actor may be nil for anonymous callers.
func Sanitize(q Quiz, actor *rbac.Actor) View {
	if rbac.IsOwnerOrAdmin(actor, q.OwnerID) {
		return q
	}
	return Public(q)
}

// Public builds the answer-free view regardless of caller.
func Public(q Quiz) PublicQuiz {
	out := PublicQuiz{
		ID:        q.ID,
		CourseID:  q.CourseID,
		Title:     q.Title,
		Questions: make([]PublicQuestion, 0, len(q.Questions)),
		CreatedAt: q.CreatedAt,
		UpdatedAt: q.UpdatedAt,
	}
	for _, qq := range q.Questions {
		pq := PublicQuestion{
			ID:      qq.ID,
			Text:    qq.Text,
			Points:  qq.Points,
			Options: make([]PublicOption, 0, len(qq.Options)),
		}
		for _, o := range qq.Options {
			pq.Options = append(pq.Options, PublicOption{ID: o.ID, Text: o.Text})
		}
		out.Questions = append(out.Questions, pq)
	}
	return out
}

package schema

import "time"

type SessionState string

const (
	StateNone             SessionState = ""
	StateWaitingQuestion  SessionState = "waiting_for_question"
	StateAddWaitQuestion  SessionState = "add_waiting_question"
	StateAddWaitAnswer    SessionState = "add_waiting_answer"
)

// DataKeyAddQuestion holds the pending question text while the add flow is
// between its two steps. Only meaningful in StateAddWaitAnswer.
const DataKeyAddQuestion = "add_question"

type Session struct {
	UserID    int64             `json:"user_id"`
	State     SessionState      `json:"state"`
	Data      map[string]string `json:"data"`
	ExpiresAt *time.Time        `json:"expires_at"`
}

func NewSession(userID int64) Session {
	return Session{UserID: userID, State: StateNone, Data: map[string]string{}}
}

func (s Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && s.ExpiresAt.Before(now)
}

// Reset returns the session to its initial shape. Clearing state always
// clears scratch data so an abandoned flow cannot leak into a new one.
func (s *Session) Reset() {
	s.State = StateNone
	s.Data = map[string]string{}
	s.ExpiresAt = nil
}

package ws

import "encoding/json"

// MessageType constants for WebSocket protocol.
const (
	// Client -> Server
	TypeJoin   = "join"
	TypeAnswer = "answer"

	// Server -> Client (broadcast)
	TypeQuestionStarted   = "question_started"
	TypeCountdownTick     = "countdown_tick"
	TypeScoreboardUpdate  = "scoreboard_update"
	TypeSessionFinished   = "session_finished"
	TypeParticipantJoined = "participant_joined"
	TypeParticipantLeft   = "participant_left"

	// Server -> Client (unicast)
	TypeJoinConfirmed = "join_confirmed"
	TypeAnswerResult  = "answer_result"
	TypeJoinError     = "join_error"
	TypeError         = "error"
)

// Message wraps all WebSocket payloads with a type tag.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewMessage marshals payload into a typed message. Marshal errors are
// impossible for the payload structs below, so they are swallowed.
func NewMessage(msgType string, payload interface{}) Message {
	msg := Message{Type: msgType}
	msg.Payload, _ = json.Marshal(payload)
	return msg
}

// Client Messages (incoming)

type JoinPayload struct {
	Name string `json:"name"`
}

type AnswerPayload struct {
	SelectedOption int `json:"selected_option"`
}

// Server Messages (outgoing)

type QuestionStartedPayload struct {
	Number    int      `json:"number"`
	Total     int      `json:"total"`
	Text      string   `json:"text"`
	Options   []string `json:"options"`
	Countdown int      `json:"countdown"`
}

type CountdownTickPayload struct {
	Remaining int `json:"remaining"`
}

type ScoreboardUpdatePayload struct {
	Scores []ScoreboardEntry `json:"scores"`
}

type ScoreboardEntry struct {
	Name           string `json:"name"`
	Score          int    `json:"score"`
	CorrectAnswers int    `json:"correct_answers"`
}

type SessionFinishedPayload struct {
	FinalScores []FinalScore `json:"final_scores"`
}

type FinalScore struct {
	Rank           int    `json:"rank"`
	Name           string `json:"name"`
	Score          int    `json:"score"`
	CorrectAnswers int    `json:"correct_answers"`
}

type ParticipantJoinedPayload struct {
	Name              string `json:"name"`
	TotalParticipants int    `json:"total_participants"`
}

type ParticipantLeftPayload struct {
	Name              string `json:"name"`
	TotalParticipants int    `json:"total_participants"`
}

type JoinConfirmedPayload struct {
	ConnectionID      string `json:"connection_id"`
	Name              string `json:"name"`
	TotalParticipants int    `json:"total_participants"`
}

type AnswerResultPayload struct {
	IsCorrect    bool `json:"is_correct"`
	CorrectIndex int  `json:"correct_index"`
	NewScore     int  `json:"new_score"`
	PointsEarned int  `json:"points_earned"`
}

type JoinErrorPayload struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

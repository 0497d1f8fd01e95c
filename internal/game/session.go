package game

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"trivia-arena/internal/ledger"
	"trivia-arena/internal/question"
	httperrors "trivia-arena/pkg/http/errors"
	ws "trivia-arena/pkg/http/ws"
)

// maxNameLength bounds display names accepted on join.
const maxNameLength = 32

// bookkeepingTimeout bounds ledger writes performed inside loop handlers so a
// slow store cannot stall the session indefinitely.
const bookkeepingTimeout = 2 * time.Second

// Emitter delivers outbound events to participants. Implemented by ws.Hub;
// tests substitute a recorder. Delivery is fire-and-forget.
type Emitter interface {
	Broadcast(msg ws.Message)
	BroadcastExcept(exclude uuid.UUID, msg ws.Message)
	Unicast(connID uuid.UUID, msg ws.Message) error
}

type state int

const (
	stateIdle state = iota
	stateActive
	stateCompleted
)

// Config groups the session timing knobs. Production uses the defaults
// below; tests shrink them.
type Config struct {
	MinParticipants int
	QuestionSeconds int
	TickInterval    time.Duration
	JoinDelay       time.Duration
	AdvanceDelay    time.Duration
	ResetDelay      time.Duration
	Scoring         ScoringConfig
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		MinParticipants: 2,
		QuestionSeconds: 15,
		TickInterval:    time.Second,
		JoinDelay:       3 * time.Second,
		AdvanceDelay:    2 * time.Second,
		ResetDelay:      5 * time.Second,
		Scoring:         DefaultScoringConfig(),
	}
}

// Status is the read-only session snapshot for the polled query surface.
type Status struct {
	Active          bool `json:"is_active"`
	Participants    int  `json:"total_participants"`
	CurrentQuestion int  `json:"current_question"`
	TotalQuestions  int  `json:"total_questions"`
}

// Game owns the single process-wide session: current question index,
// countdown, activity flag and the participant registry. Every mutation runs
// on the internal event loop, so none of the fields carry locks.
type Game struct {
	cfg      Config
	bank     *question.Bank
	ledger   *ledger.Service
	history  *ledger.HistoryLog
	emitter  Emitter
	loop     *Loop
	scoring  *Engine
	registry *Registry
	logger   zerolog.Logger

	state         state
	sessionID     uuid.UUID
	questionIndex int
	countdown     int
	startedAt     time.Time

	// Timer handles, invalidated by the transitions that supersede them.
	startTimer   *Timer
	tickTimer    *Timer
	advanceTimer *Timer
	resetTimer   *Timer
}

// NewGame wires the session state machine. Run must be called for events to
// be processed.
func NewGame(cfg Config, bank *question.Bank, ledgerSvc *ledger.Service, history *ledger.HistoryLog, emitter Emitter, logger zerolog.Logger) *Game {
	return &Game{
		cfg:      cfg,
		bank:     bank,
		ledger:   ledgerSvc,
		history:  history,
		emitter:  emitter,
		loop:     NewLoop(logger),
		scoring:  NewEngine(cfg.Scoring),
		registry: NewRegistry(),
		logger:   logger.With().Str("component", "game").Logger(),
	}
}

// Run drives the event loop until the context is canceled.
func (g *Game) Run(ctx context.Context) error {
	return g.loop.Run(ctx)
}

// Join handles an inbound join for the given connection.
func (g *Game) Join(connID uuid.UUID, name string) {
	g.post(connID, func() { g.handleJoin(connID, name) })
}

// Answer handles an inbound answer for the given connection.
func (g *Game) Answer(connID uuid.UUID, selectedOption int) {
	g.post(connID, func() { g.handleAnswer(connID, selectedOption) })
}

// Disconnect removes the connection's participant, if any.
func (g *Game) Disconnect(connID uuid.UUID) {
	g.post(uuid.Nil, func() { g.handleDisconnect(connID) })
}

// Snapshot returns the current session status, serialized through the loop.
func (g *Game) Snapshot(ctx context.Context) (Status, error) {
	var st Status
	err := g.loop.Call(ctx, func() {
		st = Status{
			Active:          g.state == stateActive,
			Participants:    g.registry.Len(),
			CurrentQuestion: g.questionIndex + 1,
			TotalQuestions:  g.bank.Count(),
		}
	})
	return st, err
}

// post queues fn on the loop with fault reporting: a panic in any handler is
// logged and reported to the triggering connection only, and never takes the
// shared session down.
func (g *Game) post(connID uuid.UUID, fn func()) {
	g.loop.Post(func() {
		defer func() {
			if r := recover(); r != nil {
				g.logger.Error().Interface("panic", r).Str("connection_id", connID.String()).Msg("event handler fault")
				if connID != uuid.Nil {
					g.emitter.Unicast(connID, ws.NewMessage(ws.TypeError, ws.ErrorPayload{
						Code:    httperrors.ErrCodeInternalError,
						Message: "internal error handling event",
					}))
				}
			}
		}()
		fn()
	})
}

func (g *Game) handleJoin(connID uuid.UUID, name string) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLength {
		g.emitter.Unicast(connID, ws.NewMessage(ws.TypeJoinError, ws.JoinErrorPayload{
			Code:   httperrors.ErrCodeInvalidName,
			Reason: "display name must be 1-32 characters",
		}))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), bookkeepingTimeout)
	defer cancel()

	// First participant with a matching name shares its persistent score
	// history; new names get a fresh record.
	user, err := g.ledger.Resolve(ctx, name)
	if err != nil {
		g.logger.Error().Err(err).Str("name", name).Msg("resolve user failed")
		g.emitter.Unicast(connID, ws.NewMessage(ws.TypeJoinError, ws.JoinErrorPayload{
			Code:   httperrors.ErrCodeJoinFailed,
			Reason: "could not join, try again",
		}))
		return
	}

	g.registry.Add(&Participant{
		ConnID: connID,
		UserID: user.ID,
		Name:   name,
	})
	participantsGauge.Set(float64(g.registry.Len()))

	g.logger.Info().Str("name", name).Int("participants", g.registry.Len()).Msg("participant joined")

	g.emitter.Unicast(connID, ws.NewMessage(ws.TypeJoinConfirmed, ws.JoinConfirmedPayload{
		ConnectionID:      connID.String(),
		Name:              name,
		TotalParticipants: g.registry.Len(),
	}))
	g.emitter.BroadcastExcept(connID, ws.NewMessage(ws.TypeParticipantJoined, ws.ParticipantJoinedPayload{
		Name:              name,
		TotalParticipants: g.registry.Len(),
	}))

	switch g.state {
	case stateIdle:
		if g.registry.Len() >= g.cfg.MinParticipants && g.startTimer == nil {
			// Fixed grace period so more players can join before the
			// first question goes out.
			g.startTimer = g.loop.Schedule(g.cfg.JoinDelay, g.startSession)
		}
	case stateActive:
		// Mid-round joiners get the in-progress question and may answer it.
		q := g.bank.At(g.questionIndex)
		g.emitter.Unicast(connID, ws.NewMessage(ws.TypeQuestionStarted, ws.QuestionStartedPayload{
			Number:    g.questionIndex + 1,
			Total:     g.bank.Count(),
			Text:      q.Text,
			Options:   q.Options,
			Countdown: g.countdown,
		}))
	}
}

func (g *Game) startSession() {
	g.startTimer = nil
	if g.state != stateIdle {
		return
	}
	if g.registry.Len() == 0 {
		// Everyone left during the join delay; stay idle.
		return
	}

	g.state = stateActive
	g.sessionID = uuid.New()
	g.questionIndex = 0
	g.startedAt = time.Now()
	sessionsStartedTotal.Inc()

	g.logger.Info().
		Str("session_id", g.sessionID.String()).
		Int("participants", g.registry.Len()).
		Msg("session started")

	g.startQuestion()
}

// startQuestion is the Active(i) entry action: clear answered flags,
// broadcast the question and start a fresh countdown.
func (g *Game) startQuestion() {
	if g.questionIndex >= g.bank.Count() {
		g.completeSession()
		return
	}

	g.registry.ResetAnswered()
	g.countdown = g.cfg.QuestionSeconds

	q := g.bank.At(g.questionIndex)
	g.emitter.Broadcast(ws.NewMessage(ws.TypeQuestionStarted, ws.QuestionStartedPayload{
		Number:    g.questionIndex + 1,
		Total:     g.bank.Count(),
		Text:      q.Text,
		Options:   q.Options,
		Countdown: g.countdown,
	}))

	g.stopTimer(&g.tickTimer)
	g.tickTimer = g.loop.Schedule(g.cfg.TickInterval, g.tick)
}

func (g *Game) tick() {
	g.tickTimer = nil
	if g.state != stateActive {
		return
	}

	g.countdown--
	g.emitter.Broadcast(ws.NewMessage(ws.TypeCountdownTick, ws.CountdownTickPayload{
		Remaining: g.countdown,
	}))

	if g.countdown <= 0 {
		g.scheduleAdvance()
		return
	}
	g.tickTimer = g.loop.Schedule(g.cfg.TickInterval, g.tick)
}

// scheduleAdvance cancels the running countdown and arms the fixed
// between-questions delay. Idempotent: an early advance that races the final
// tick arms the delay only once.
func (g *Game) scheduleAdvance() {
	g.stopTimer(&g.tickTimer)
	if g.advanceTimer != nil {
		return
	}
	g.advanceTimer = g.loop.Schedule(g.cfg.AdvanceDelay, func() {
		g.advanceTimer = nil
		if g.state != stateActive {
			return
		}
		g.questionIndex++
		g.startQuestion()
	})
}

func (g *Game) handleAnswer(connID uuid.UUID, selectedOption int) {
	// Stale answers (inactive session, unknown participant, duplicate)
	// are dropped without a reply so late or duplicated client messages
	// go unpunished.
	if g.state != stateActive {
		return
	}
	p, ok := g.registry.Get(connID)
	if !ok || p.AnsweredThisRound {
		return
	}

	p.AnsweredThisRound = true

	q := g.bank.At(g.questionIndex)
	isCorrect := selectedOption == q.CorrectIndex

	points := 0
	if isCorrect {
		points = g.scoring.Points(g.countdown)
		p.Score += points
		p.CorrectAnswers++
		answersTotal.WithLabelValues("correct").Inc()
	} else {
		answersTotal.WithLabelValues("incorrect").Inc()
	}

	g.emitter.Unicast(connID, ws.NewMessage(ws.TypeAnswerResult, ws.AnswerResultPayload{
		IsCorrect:    isCorrect,
		CorrectIndex: q.CorrectIndex,
		NewScore:     p.Score,
		PointsEarned: points,
	}))

	g.emitter.Broadcast(ws.NewMessage(ws.TypeScoreboardUpdate, ws.ScoreboardUpdatePayload{
		Scores: g.scoreboard(),
	}))

	if g.registry.AllAnswered() {
		g.scheduleAdvance()
	}
}

func (g *Game) handleDisconnect(connID uuid.UUID) {
	p, ok := g.registry.Remove(connID)
	if !ok {
		return
	}
	participantsGauge.Set(float64(g.registry.Len()))

	g.logger.Info().Str("name", p.Name).Int("participants", g.registry.Len()).Msg("participant left")

	g.emitter.Broadcast(ws.NewMessage(ws.TypeParticipantLeft, ws.ParticipantLeftPayload{
		Name:              p.Name,
		TotalParticipants: g.registry.Len(),
	}))

	if g.registry.Len() == 0 {
		if g.state == stateActive {
			// Deliberate data loss: an emptied session is reset without
			// ledger or history writes.
			sessionsAbortedTotal.Inc()
			g.logger.Warn().Str("session_id", g.sessionID.String()).Msg("session abandoned, resetting without bookkeeping")
		}
		g.reset()
	}
}

func (g *Game) completeSession() {
	g.state = stateCompleted
	g.stopTimer(&g.tickTimer)
	g.stopTimer(&g.advanceTimer)

	endedAt := time.Now()
	ranked := g.registry.Ranked()

	finalScores := make([]ws.FinalScore, len(ranked))
	results := make([]ledger.PlayerResult, len(ranked))
	for i, p := range ranked {
		finalScores[i] = ws.FinalScore{
			Rank:           i + 1,
			Name:           p.Name,
			Score:          p.Score,
			CorrectAnswers: p.CorrectAnswers,
		}
		results[i] = ledger.PlayerResult{Name: p.Name, Score: p.Score}
	}

	ctx, cancel := context.WithTimeout(context.Background(), bookkeepingTimeout)
	defer cancel()
	for _, p := range ranked {
		if err := g.ledger.Record(ctx, p.UserID, p.Name, p.Score); err != nil {
			g.logger.Warn().Err(err).Str("name", p.Name).Msg("ledger record failed")
		}
	}

	g.history.Append(ledger.HistoryEntry{
		SessionID: g.sessionID,
		StartedAt: g.startedAt,
		EndedAt:   endedAt,
		Results:   results,
	})

	g.emitter.Broadcast(ws.NewMessage(ws.TypeSessionFinished, ws.SessionFinishedPayload{
		FinalScores: finalScores,
	}))
	sessionsCompletedTotal.Inc()

	g.logger.Info().
		Str("session_id", g.sessionID.String()).
		Int("participants", len(ranked)).
		Msg("session finished")

	g.resetTimer = g.loop.Schedule(g.cfg.ResetDelay, func() {
		g.resetTimer = nil
		g.reset()
	})
}

// reset returns the machine to Idle and clears all session and participant
// state. Every pending timer is invalidated here so nothing stale fires
// against the fresh state.
func (g *Game) reset() {
	g.stopTimer(&g.startTimer)
	g.stopTimer(&g.tickTimer)
	g.stopTimer(&g.advanceTimer)
	g.stopTimer(&g.resetTimer)

	g.state = stateIdle
	g.sessionID = uuid.Nil
	g.questionIndex = 0
	g.countdown = 0
	g.startedAt = time.Time{}
	g.registry.Clear()
	participantsGauge.Set(0)
}

func (g *Game) stopTimer(t **Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}

func (g *Game) scoreboard() []ws.ScoreboardEntry {
	ranked := g.registry.Ranked()
	entries := make([]ws.ScoreboardEntry, len(ranked))
	for i, p := range ranked {
		entries[i] = ws.ScoreboardEntry{
			Name:           p.Name,
			Score:          p.Score,
			CorrectAnswers: p.CorrectAnswers,
		}
	}
	return entries
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/boiko-school/nmt-backend/internal/config"
	"github.com/boiko-school/nmt-backend/internal/exam"
	"github.com/boiko-school/nmt-backend/internal/middleware"
	"github.com/boiko-school/nmt-backend/internal/model"
	"github.com/boiko-school/nmt-backend/internal/response"
	"github.com/boiko-school/nmt-backend/internal/service"
	"github.com/boiko-school/nmt-backend/internal/session"
	ws "github.com/boiko-school/nmt-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams the live exam to participants: session changes,
// countdown ticks, answer acknowledgements and grading.
type WSHandler struct {
	rdb               *redis.Client
	cfg               *config.Config
	sessionService    *service.SessionService
	answerService     *service.AnswerService
	submissionService *service.SubmissionService
	log               zerolog.Logger
	upgrader          websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(
	rdb *redis.Client,
	cfg *config.Config,
	sessionService *service.SessionService,
	answerService *service.AnswerService,
	submissionService *service.SubmissionService,
) *WSHandler {
	return &WSHandler{
		rdb:               rdb,
		cfg:               cfg,
		sessionService:    sessionService,
		answerService:     answerService,
		submissionService: submissionService,
		log:               log.With().Str("component", "ws_handler").Logger(),
		upgrader:          buildUpgrader(cfg.AllowedOrigins),
	}
}

// wsConn bundles the socket with a write mutex. The reader goroutine and
// the event goroutine both write to the same connection.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (w *wsConn) send(v interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return ws.WriteTyped(w.conn, v)
}

func (w *wsConn) sendError(code response.ErrCode) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = ws.WriteError(w.conn, string(code), response.GetMessage(code))
}

// ExamStream godoc
// WS /ws/v1/exam/stream?token=...
// Upgrades to WebSocket. The server pushes session and tick events and
// accepts answer, submit and ping actions.
func (h *WSHandler) ExamStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer raw.Close()

	conn := &wsConn{conn: raw}
	participant := &model.Participant{ID: claims.UserID, Email: claims.Email, Role: claims.Role}

	wsLog := h.log.With().Int("participant_id", participant.ID).Logger()
	wsLog.Info().Msg("Participant connected")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Connection-local clock state.
	state := session.NewState()
	clock := session.NewClock(time.Now)
	tracker := exam.NewAnswerTracker()

	// Restore answers mirrored by earlier connections.
	if set, err := h.answerService.Load(ctx, participant.ID); err != nil {
		wsLog.Warn().Err(err).Msg("Answer restore failed, starting empty")
	} else {
		tracker.Seed(set)
	}

	// Current descriptor, then live updates over pub/sub.
	d, err := h.sessionService.Get(ctx)
	if err != nil {
		wsLog.Error().Err(err).Msg("Session read failed")
		conn.sendError(response.ErrSessionUnavailable)
		return
	}
	state.Apply(d)
	if err := conn.send(ws.SessionEvent{Event: ws.EventSession, Status: d.Status}); err != nil {
		return
	}

	pubsub := h.rdb.Subscribe(ctx, config.CacheKey.SessionChannel())
	defer pubsub.Close()

	updates := make(chan model.SessionDescriptor, 4)
	go h.relayDescriptors(ctx, pubsub, conn, state, updates, wsLog)

	runner := session.NewRunner(state, clock, time.Second)
	go runner.Run(ctx, updates)
	go h.relayClock(ctx, runner, conn, tracker, participant, wsLog)

	for {
		var envelope ws.RequestEnvelope
		payload, err := ws.ReadRaw(raw)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}
		if err := json.Unmarshal(payload, &envelope); err != nil {
			conn.sendError(response.ErrInvalidPayload)
			continue
		}

		switch envelope.Action {
		case ws.ActionAnswer:
			var req ws.AnswerRequest
			if err := json.Unmarshal(payload, &req); err != nil {
				conn.sendError(response.ErrInvalidPayload)
				continue
			}
			h.handleAnswer(ctx, conn, state, tracker, participant, &req, wsLog)
		case ws.ActionSubmit:
			h.handleSubmit(ctx, conn, tracker, participant, false, wsLog)
		case ws.ActionPing:
			_ = conn.send(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(envelope.Action)).Msg("Unknown action")
			conn.sendError(response.ErrInvalidPayload)
		}
	}
}

// relayDescriptors forwards broadcast descriptors into the clock runner
// and notifies the client of every status change.
func (h *WSHandler) relayDescriptors(
	ctx context.Context,
	pubsub *redis.PubSub,
	conn *wsConn,
	state *session.State,
	updates chan<- model.SessionDescriptor,
	wsLog zerolog.Logger,
) {
	defer close(updates)
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var d model.SessionDescriptor
			if err := json.Unmarshal([]byte(msg.Payload), &d); err != nil {
				wsLog.Warn().Err(err).Msg("Malformed session broadcast, treating as absent")
				state.ApplyAbsent()
				d = state.Current()
			} else {
				state.Apply(d)
			}
			_ = conn.send(ws.SessionEvent{Event: ws.EventSession, Status: d.Status})
			select {
			case updates <- d:
			case <-ctx.Done():
				return
			}
		}
	}
}

// relayClock forwards clock events to the client. When the countdown
// expires it waits out the settle window so a final answer in flight can
// land, then auto-submits.
func (h *WSHandler) relayClock(
	ctx context.Context,
	runner *session.Runner,
	conn *wsConn,
	tracker *exam.AnswerTracker,
	participant *model.Participant,
	wsLog zerolog.Logger,
) {
	for ev := range runner.Events {
		if ev.Expired {
			_ = conn.send(ws.ExpiredEvent{Event: ws.EventExpired})
			select {
			case <-time.After(h.cfg.AutoSubmitSettle):
			case <-ctx.Done():
				return
			}
			h.handleSubmit(ctx, conn, tracker, participant, true, wsLog)
			continue
		}
		_ = conn.send(ws.TickEvent{Event: ws.EventTick, Remaining: ev.Remaining})
	}
}

func (h *WSHandler) handleAnswer(
	ctx context.Context,
	conn *wsConn,
	state *session.State,
	tracker *exam.AnswerTracker,
	participant *model.Participant,
	req *ws.AnswerRequest,
	wsLog zerolog.Logger,
) {
	if !model.ValidSubject(req.Subject) {
		conn.sendError(response.ErrInvalidSubject)
		return
	}
	if req.Index < 1 || len(req.Answer) == 0 {
		conn.sendError(response.ErrInvalidPayload)
		return
	}
	if tracker.Submitted() {
		conn.sendError(response.ErrAlreadySubmitted)
		return
	}
	if !state.InteractionAllowed() {
		conn.sendError(response.ErrSessionNotStarted)
		return
	}

	tracker.Record(req.Subject, req.Index, req.Answer)
	if err := h.answerService.Save(ctx, participant.ID, req.Subject, req.Index, req.Answer); err != nil {
		wsLog.Error().Err(err).Msg("Answer mirror failed")
		conn.sendError(response.ErrInternal)
		return
	}

	_ = conn.send(ws.SavedEvent{Event: ws.EventSaved, Subject: req.Subject, Index: req.Index})
}

func (h *WSHandler) handleSubmit(
	ctx context.Context,
	conn *wsConn,
	tracker *exam.AnswerTracker,
	participant *model.Participant,
	auto bool,
	wsLog zerolog.Logger,
) {
	if tracker.Submitted() {
		conn.sendError(response.ErrAlreadySubmitted)
		return
	}

	submission, err := h.submissionService.Submit(ctx, participant, tracker.Snapshot(), auto)
	if err != nil {
		if errors.Is(err, service.ErrAlreadySubmitted) {
			tracker.MarkSubmitted()
			conn.sendError(response.ErrAlreadySubmitted)
			return
		}
		wsLog.Error().Err(err).Msg("Submission failed")
		conn.sendError(response.ErrInternal)
		return
	}

	tracker.MarkSubmitted()
	wsLog.Info().Bool("auto", auto).Msg("Submission graded")
	_ = conn.send(ws.GradedEvent{
		Event:         ws.EventGraded,
		Score:         submission.Score,
		AutoSubmitted: submission.AutoSubmitted,
	})
}

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"advisorbot/internal/backend"
	"advisorbot/internal/identity"
	"advisorbot/internal/model"
)

const (
	replySessionExpired = "Session expired. Please log in again."
	replyUnreachable    = "Error: Could not connect to server."
	replyUnrecognized   = "Error: Unrecognized response from server."
)

type ChatBackend interface {
	Chat(ctx context.Context, token, query, sessionID string) (*backend.ChatReply, error)
	UploadFile(ctx context.Context, token, filename string, file io.Reader) (*backend.UploadResult, error)
}

type ExchangePublisher interface {
	PublishExchange(ctx context.Context, event model.ExchangeEvent) error
}

type ExchangeResult struct {
	SessionID string        `json:"session_id"`
	Query     model.Message `json:"query"`
	Reply     model.Message `json:"reply"`
	Failed    bool          `json:"failed"`
}

// ExchangeService sends user queries to the backend and records both sides
// of each exchange in the session that was active when the query was sent.
type ExchangeService struct {
	backend     ChatBackend
	sessions    *SessionController
	credentials *Credentials
	publisher   ExchangePublisher
	logger      *zap.Logger
	location    *time.Location
	now         func() time.Time

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewExchangeService(
	chat ChatBackend,
	sessions *SessionController,
	credentials *Credentials,
	publisher ExchangePublisher,
	logger *zap.Logger,
) *ExchangeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExchangeService{
		backend:     chat,
		sessions:    sessions,
		credentials: credentials,
		publisher:   publisher,
		logger:      logger,
		location:    time.Local,
		now:         time.Now,
		inFlight:    make(map[string]struct{}),
	}
}

// Send runs one exchange on the active session, creating a session when none
// is active. Backend failures become the bot reply; only local validation
// errors are returned.
func (s *ExchangeService) Send(ctx context.Context, query string) (*ExchangeResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	sessionID := s.sessions.ActiveID()
	if sessionID == "" {
		sessionID = s.sessions.CreateSession(ctx).ID
	}
	if !s.begin(sessionID) {
		return nil, ErrExchangeInFlight
	}
	defer s.end(sessionID)

	userMsg := s.message(query, model.SenderUser)
	s.sessions.AppendMessages(ctx, sessionID, userMsg)

	token, err := s.credentials.Token(ctx)
	if err != nil {
		s.logger.Warn("token unavailable, sending without authorization", zap.Error(err))
		token = ""
	}

	text, failed := s.ask(ctx, token, query, sessionID)
	botMsg := s.message(text, model.SenderBot)
	s.sessions.AppendMessages(ctx, sessionID, botMsg)

	s.publish(ctx, token, model.ExchangeEvent{
		SessionID:  sessionID,
		Query:      query,
		Reply:      text,
		Failed:     failed,
		OccurredAt: s.now(),
	})

	return &ExchangeResult{
		SessionID: sessionID,
		Query:     userMsg,
		Reply:     botMsg,
		Failed:    failed,
	}, nil
}

// AttachFile uploads a file and records it in the active session as a user
// message holding a markdown link to the uploaded copy.
func (s *ExchangeService) AttachFile(ctx context.Context, filename string, file io.Reader) (*model.Message, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, ErrInvalidInput
	}
	token, err := s.credentials.Token(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.backend.UploadFile(ctx, token, filename, file)
	if err != nil {
		return nil, fmt.Errorf("upload file failed: %w", err)
	}

	sessionID := s.sessions.ActiveID()
	if sessionID == "" {
		sessionID = s.sessions.CreateSession(ctx).ID
	}
	target := result.URL
	if target == "" {
		target = result.Filename
	}
	msg := s.message(fmt.Sprintf("[%s](%s)", result.Filename, target), model.SenderUser)
	s.sessions.AppendMessages(ctx, sessionID, msg)
	return &msg, nil
}

func (s *ExchangeService) ask(ctx context.Context, token, query, sessionID string) (string, bool) {
	reply, err := s.backend.Chat(ctx, token, query, sessionID)
	if err == nil {
		return reply.Text, false
	}

	s.logger.Warn("chat exchange failed", zap.String("session_id", sessionID), zap.Error(err))

	var statusErr *backend.StatusError
	switch {
	case backend.IsUnauthorized(err):
		return replySessionExpired, true
	case errors.As(err, &statusErr):
		if strings.HasPrefix(statusErr.Detail, "Error") {
			return statusErr.Detail, true
		}
		return "Error: " + statusErr.Detail, true
	case errors.Is(err, backend.ErrUnrecognizedResponse):
		return replyUnrecognized, true
	case errors.Is(err, backend.ErrUnavailable):
		return replyUnreachable, true
	default:
		return "Error: " + err.Error(), true
	}
}

func (s *ExchangeService) publish(ctx context.Context, token string, event model.ExchangeEvent) {
	if s.publisher == nil {
		return
	}
	if id := identity.Read(token); id.Email != "User" {
		event.Email = id.Email
	}
	if err := s.publisher.PublishExchange(ctx, event); err != nil {
		s.logger.Warn("publish exchange event failed", zap.Error(err))
	}
}

func (s *ExchangeService) message(text string, sender model.Sender) model.Message {
	return model.Message{
		Text:   text,
		Sender: sender,
		Time:   FormatClock(s.now(), s.location),
	}
}

func (s *ExchangeService) begin(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[sessionID]; busy {
		return false
	}
	s.inFlight[sessionID] = struct{}{}
	return true
}

func (s *ExchangeService) end(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, sessionID)
}

package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labmanager/labmanager-api/auth"
	"github.com/labmanager/labmanager-api/board"
	"github.com/labmanager/labmanager-api/models"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 16
	clockInterval  = time.Minute
)

// Authenticator is the auth provider as seen by a stream session
type Authenticator interface {
	Restore(ctx context.Context, token string) (*auth.Identity, error)
	SignIn(ctx context.Context, email, password string) (string, *auth.Identity, error)
	SignOut(ctx context.Context, identity *auth.Identity) error
}

// Deps are the collaborators shared by all sessions
type Deps struct {
	Auth     Authenticator
	Orders   Source[[]models.Order]
	Dentists Source[[]models.Dentist]
	Today    func() string
	Logger   *zap.Logger
}

// Session is one WebSocket client. Its auth gate and board filter are only
// touched by the Serve loop; the pumps move bytes in and out of the socket.
type Session struct {
	ID   string
	hub  *Hub
	conn *websocket.Conn
	deps Deps
	send chan []byte

	closeOnce sync.Once

	gate      *auth.Gate
	query     string
	mode      board.Mode
	today     string
	orders    []models.Order
	hasOrders bool
	orderCh   <-chan []models.Order
	dentistCh <-chan []models.Dentist
	cancels   []func()
	overflow  bool
}

// NewSession wraps an upgraded connection
func NewSession(hub *Hub, conn *websocket.Conn, deps Deps) *Session {
	return &Session{
		ID:   uuid.NewString(),
		hub:  hub,
		conn: conn,
		deps: deps,
		send: make(chan []byte, sendBuffer),
		gate: auth.NewGate(),
		mode: board.ModeActive,
	}
}

// Close drops the connection; Serve returns shortly after
func (s *Session) Close() {
	s.closeOnce.Do(func() { _ = s.conn.Close() })
}

// Serve runs the session until the client leaves or ctx is done. A non-empty
// token resolves the gate right away; otherwise the first auth or sign_in
// frame does.
func (s *Session) Serve(ctx context.Context, token string) {
	s.hub.register(s)
	defer s.hub.unregister(s)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	inbound := make(chan ClientFrame)
	go s.writePump()
	go s.readPump(ctx, inbound)
	defer close(s.send)
	defer s.unsubscribe()

	if token != "" {
		s.restore(ctx, token)
	}

	ticker := time.NewTicker(clockInterval)
	defer ticker.Stop()

	for !s.overflow {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-inbound:
			if !ok {
				return
			}
			s.handle(ctx, frame)
		case orders, ok := <-s.orderCh:
			if !ok {
				s.orderCh = nil
				continue
			}
			s.orders = orders
			s.hasOrders = true
			s.emitBoard()
		case dentists, ok := <-s.dentistCh:
			if !ok {
				s.dentistCh = nil
				continue
			}
			s.emit(TypeDentists, DentistsPayload{Count: len(dentists), Dentists: dentists})
		case <-ticker.C:
			// lateness depends on the date, so a new day re-renders the board
			if s.hasOrders && s.deps.Today() != s.today {
				s.emitBoard()
			}
		}
	}
	s.deps.Logger.Warn("Dropping slow stream client", zap.String("session_id", s.ID))
}

func (s *Session) handle(ctx context.Context, frame ClientFrame) {
	switch frame.Type {
	case TypeAuth:
		if s.gate.State() != auth.StateUnknown {
			s.emitError("already_resolved", "Session state is already known")
			return
		}
		s.restore(ctx, frame.Token)
	case TypeSignIn:
		s.signIn(ctx, frame.Email, frame.Password)
	case TypeSignOut:
		s.signOut(ctx)
	case TypeFilter:
		mode, ok := board.ParseMode(frame.Mode)
		if !ok {
			s.emitError("invalid_mode", "Mode must be active or completed")
			return
		}
		s.query = frame.Query
		s.mode = mode
		if s.hasOrders {
			s.emitBoard()
		}
	default:
		s.emitError("unknown_frame", "Unknown frame type")
	}
}

func (s *Session) restore(ctx context.Context, token string) {
	var identity *auth.Identity
	if token != "" {
		id, err := s.deps.Auth.Restore(ctx, token)
		if err != nil {
			s.deps.Logger.Debug("Session restore failed", zap.String("session_id", s.ID), zap.Error(err))
		} else {
			identity = id
		}
	}

	if err := s.gate.Resolve(identity); err != nil {
		s.emitError("already_resolved", err.Error())
		return
	}
	s.emitSession("")
	if identity != nil {
		s.subscribe(ctx)
	}
}

func (s *Session) signIn(ctx context.Context, email, password string) {
	if s.gate.State() == auth.StateUnknown {
		// signing in without a stored token: nothing to restore
		_ = s.gate.Resolve(nil)
		s.emitSession("")
	}
	if s.gate.State() != auth.StateUnauthenticated {
		s.emitError("already_authenticated", "Already signed in")
		return
	}

	token, identity, err := s.deps.Auth.SignIn(ctx, email, password)
	if err != nil {
		failure := auth.Classify(err)
		if failure.Reason == auth.ReasonOther && !errors.Is(err, auth.ErrSignInDisabled) {
			s.deps.Logger.Error("Sign-in failed", zap.String("session_id", s.ID), zap.Error(err))
		}
		s.emit(TypeSignInError, failure)
		return
	}
	if err := s.gate.SignedIn(identity); err != nil {
		s.emitError("invalid_transition", err.Error())
		return
	}
	s.emitSession(token)
	s.subscribe(ctx)
}

func (s *Session) signOut(ctx context.Context) {
	identity, err := s.gate.SignOut()
	if err != nil {
		s.emitError("not_authenticated", "Not signed in")
		return
	}
	if err := s.deps.Auth.SignOut(ctx, identity); err != nil {
		s.deps.Logger.Error("Failed to revoke session token", zap.String("session_id", s.ID), zap.Error(err))
	}
	s.unsubscribe()
	s.emitSession("")
}

func (s *Session) subscribe(ctx context.Context) {
	orders, cancelOrders, err := s.deps.Orders.Subscribe(ctx)
	if err != nil {
		s.deps.Logger.Error("Failed to subscribe to orders", zap.Error(err))
		s.emitError("subscribe_failed", "Could not load orders")
		return
	}
	dentists, cancelDentists, err := s.deps.Dentists.Subscribe(ctx)
	if err != nil {
		cancelOrders()
		s.deps.Logger.Error("Failed to subscribe to dentists", zap.Error(err))
		s.emitError("subscribe_failed", "Could not load dentists")
		return
	}
	s.orderCh, s.dentistCh = orders, dentists
	s.cancels = append(s.cancels, cancelOrders, cancelDentists)
}

func (s *Session) unsubscribe() {
	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil
	s.orderCh, s.dentistCh = nil, nil
	s.orders, s.hasOrders = nil, false
}

func (s *Session) emitBoard() {
	s.today = s.deps.Today()
	s.emit(TypeBoard, board.Build(s.orders, s.query, s.mode, s.today))
}

func (s *Session) emitSession(token string) {
	s.emit(TypeSession, SessionPayload{State: s.gate.State(), User: s.gate.Identity(), Token: token})
}

func (s *Session) emitError(code, message string) {
	s.emit(TypeError, ErrorPayload{Code: code, Message: message})
}

func (s *Session) emit(frameType string, payload interface{}) {
	data, err := json.Marshal(Envelope{Type: frameType, Payload: payload, Timestamp: time.Now().UTC()})
	if err != nil {
		s.deps.Logger.Error("Failed to encode stream frame", zap.String("type", frameType), zap.Error(err))
		return
	}
	select {
	case s.send <- data:
	default:
		s.overflow = true
	}
}

func (s *Session) readPump(ctx context.Context, inbound chan<- ClientFrame) {
	defer close(inbound)
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame ClientFrame
		if err := s.conn.ReadJSON(&frame); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				frame = ClientFrame{Type: "invalid"}
			} else {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					s.deps.Logger.Warn("Stream read error", zap.String("session_id", s.ID), zap.Error(err))
				}
				return
			}
		}
		select {
		case inbound <- frame:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

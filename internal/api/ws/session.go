// Package ws implements the websocket gateway client sessions come through.
// A session is authenticated before the upgrade, then spends its life reading
// frames into the dispatcher; replies come back through a per-session sink
// that serializes writes onto the connection.
package ws

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fieldtrack/assettrack/internal/api/metrics"
	"github.com/fieldtrack/assettrack/internal/auth"
	"github.com/fieldtrack/assettrack/internal/transport/dispatch"
)

const writeTimeout = 10 * time.Second

// Gateway upgrades authenticated HTTP requests into client sessions.
type Gateway struct {
	verifier   *auth.Authenticator
	dispatcher *dispatch.Dispatcher
	upgrader   websocket.Upgrader
	log        zerolog.Logger
}

func NewGateway(verifier *auth.Authenticator, dispatcher *dispatch.Dispatcher, log zerolog.Logger) *Gateway {
	return &Gateway{
		verifier:   verifier,
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Desktop clients connect from file:// contexts with no Origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: log,
	}
}

// Handle serves GET /ws. The token travels in the Authorization header or,
// for clients that cannot set headers on websocket dials, a token query
// parameter. Verification happens before the upgrade so a bad token costs no
// connection state.
func (g *Gateway) Handle(c echo.Context) error {
	tokenCtx, err := g.verifier.Verify(bearerToken(c.Request()))
	if err != nil {
		metrics.HandshakesRejectedTotal.Inc()
		g.log.Warn().Err(err).Str("remote", c.Request().RemoteAddr).Msg("session handshake rejected")
		return echo.NewHTTPError(http.StatusForbidden, "authentication failed")
	}

	conn, err := g.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		return nil
	}

	s := &session{
		conn:    conn,
		subject: tokenCtx.Subject,
		log:     g.log.With().Str("subject", tokenCtx.Subject).Str("remote", conn.RemoteAddr().String()).Logger(),
	}
	go s.run(g.dispatcher)
	return nil
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	return r.URL.Query().Get("token")
}

// session is one connected client. All writes go through send; reads happen
// only in run.
type session struct {
	conn    *websocket.Conn
	subject string
	writeMu sync.Mutex
	log     zerolog.Logger
}

// run owns the connection: it greets the client, then pumps frames into the
// dispatcher until the connection drops.
func (s *session) run(d *dispatch.Dispatcher) {
	metrics.SessionsActive.Inc()
	s.log.Info().Msg("session opened")
	defer func() {
		metrics.SessionsActive.Dec()
		_ = s.conn.Close()
		s.log.Info().Msg("session closed")
	}()

	s.send("hello " + s.subject)

	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn().Err(err).Msg("session read failed")
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		d.Enqueue(string(data), s.send)
	}
}

// send delivers one outbound frame. Write failures are logged and swallowed:
// a gone client must never propagate an error into the dispatch worker.
func (s *session) send(outbound string) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := s.conn.WriteMessage(websocket.TextMessage, []byte(outbound)); err != nil {
		s.log.Debug().Err(err).Msg("dropping reply to gone client")
	}
}

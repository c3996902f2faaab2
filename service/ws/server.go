package ws

import (
	"net"
	"net/http"
	"time"

	"github.com/anandbobba/Innovex-Service/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	readWait     = 60 * time.Second
	writeWait    = 5 * time.Second
	pingInterval = 30 * time.Second
	maxFrameSize = 1 << 20 // 1MB
)

// Server owns the upgrader and the hub. AllowedOrigin "*" disables the
// origin check (development).
type Server struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewServer(hub *Hub, allowedOrigin string) *Server {
	return &Server{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "*" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		},
	}
}

func (s *Server) Hub() *Hub { return s.hub }

// HandleWS upgrades the connection and runs the read loop. The only inbound
// frames are room join/leave signals; everything else is ignored.
func (s *Server) HandleWS(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[ws] upgrade error: %v", err)
		return
	}

	client := newClient(conn)
	s.hub.register(client)
	go client.writePump()

	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readWait))
	})

	defer func() {
		s.hub.unregister(client)
		logger.Infof("[ws] disconnected client=%s", client.ID)
	}()

	for {
		mt, raw, rerr := conn.ReadMessage()
		if rerr != nil {
			if websocket.IsCloseError(rerr,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Debugf("[ws] peer closed client=%s", client.ID)
			} else if ne, ok := rerr.(net.Error); ok && ne.Timeout() {
				logger.Infof("[ws] read timeout client=%s", client.ID)
			} else {
				logger.Infof("[ws] read error client=%s err=%v", client.ID, rerr)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		frame, perr := ParseFrame(raw)
		if perr != nil {
			sample := raw
			if len(sample) > 256 {
				sample = sample[:256]
			}
			logger.Infof("[ws] bad frame client=%s err=%v sample=%q", client.ID, perr, sample)
			continue
		}

		id := roomID(frame.Data)
		switch frame.Event {
		case EventTeamJoin:
			if id != "" {
				s.hub.Join(client, RoomTeam(id))
			}
		case EventTeamLeave:
			s.hub.Leave(client, RoomTeam(id))
		case EventSpocJoin:
			if id != "" {
				s.hub.Join(client, RoomSpoc(id))
			}
		case EventSpocLeave:
			s.hub.Leave(client, RoomSpoc(id))
		default:
			logger.Debugf("[ws] ignoring event=%s client=%s", frame.Event, client.ID)
		}
	}
}

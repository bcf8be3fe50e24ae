package udpnotify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"strings"
	"sync"

	"comicnotifier/pkg/models"
)

// Notification is the datagram sent to subscribers.
type Notification struct {
	Type   string               `json:"type"` // "chapter"
	Update models.ChapterUpdate `json:"update"`
}

// Server keeps a set of subscribed UDP peers. Peers send SUBSCRIBE or
// UNSUBSCRIBE; everything else is ignored.
type Server struct {
	log *slog.Logger

	mu      sync.Mutex
	clients map[string]*net.UDPAddr // key = ip:port
	conn    *net.UDPConn
}

func New(log *slog.Logger) *Server {
	return &Server{
		log:     log,
		clients: make(map[string]*net.UDPAddr),
	}
}

// ListenAndServe blocks until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return err
	}
	s.log.Info("udp notify listening", "addr", conn.LocalAddr().String())
	return s.Serve(ctx, conn)
}

func (s *Server) Serve(ctx context.Context, conn *net.UDPConn) error {
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	buf := make([]byte, 2048)
	for {
		n, clientAddr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Warn("udp read", "error", err)
			continue
		}

		switch strings.ToUpper(strings.TrimSpace(string(buf[:n]))) {
		case "SUBSCRIBE":
			s.mu.Lock()
			s.clients[clientAddr.String()] = clientAddr
			total := len(s.clients)
			s.mu.Unlock()
			s.log.Debug("udp subscribed", "remote", clientAddr.String(), "total", total)
		case "UNSUBSCRIBE":
			s.mu.Lock()
			delete(s.clients, clientAddr.String())
			total := len(s.clients)
			s.mu.Unlock()
			s.log.Debug("udp unsubscribed", "remote", clientAddr.String(), "total", total)
		}
	}
}

// Count returns the number of subscribers.
func (s *Server) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) Broadcast(u models.ChapterUpdate) {
	b, err := json.Marshal(Notification{Type: "chapter", Update: u})
	if err != nil {
		s.log.Error("udp marshal", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return
	}
	for key, addr := range s.clients {
		if _, err := s.conn.WriteToUDP(b, addr); err != nil {
			s.log.Warn("udp send failed", "remote", key, "error", err)
		}
	}
}

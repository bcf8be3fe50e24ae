package tcpsync

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"comicnotifier/pkg/models"
)

const writeTimeout = 2 * time.Second

// Server streams every chapter update as newline-delimited JSON to all
// connected TCP clients. It is an operator feed, not scoped per user.
type Server struct {
	log *slog.Logger

	mu      sync.Mutex
	clients map[net.Conn]struct{}
}

func New(log *slog.Logger) *Server {
	return &Server{
		log:     log,
		clients: make(map[net.Conn]struct{}),
	}
}

// ListenAndServe blocks until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.log.Info("tcp stream listening", "addr", ln.Addr().String())
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		s.closeAll()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Warn("tcp accept", "error", err)
			continue
		}
		s.addClient(conn)
		s.log.Debug("tcp client connected", "remote", conn.RemoteAddr().String())

		go s.readLoop(conn)
	}
}

func (s *Server) addClient(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[conn] = struct{}{}
}

func (s *Server) removeClient(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, conn)
	_ = conn.Close()
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		_ = conn.Close()
		delete(s.clients, conn)
	}
}

// Count returns the number of connected clients.
func (s *Server) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// readLoop drains the connection to notice when the client goes away.
func (s *Server) readLoop(conn net.Conn) {
	sc := bufio.NewScanner(conn)
	for sc.Scan() {
	}
	s.removeClient(conn)
	s.log.Debug("tcp client disconnected", "remote", conn.RemoteAddr().String())
}

func (s *Server) Broadcast(u models.ChapterUpdate) {
	b, err := json.Marshal(u)
	if err != nil {
		s.log.Error("tcp marshal", "error", err)
		return
	}
	b = append(b, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if _, err := conn.Write(b); err != nil {
			delete(s.clients, conn)
			_ = conn.Close()
		}
	}
}

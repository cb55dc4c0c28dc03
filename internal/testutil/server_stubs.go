package testutil

import (
	"context"
	"net/http"
	"sync"
)

// StubHTTPServer stands in for a listening server. ListenAndServe blocks until
// Shutdown, like net/http, unless ListenErr is set.
type StubHTTPServer struct {
	AddrVal     string
	HandlerVal  http.Handler
	ListenErr   error
	ShutdownErr error

	mu            sync.Mutex
	listenCalls   int
	shutdownCalls int
	closed        chan struct{}
}

func (s *StubHTTPServer) done() chan struct{} {
	if s.closed == nil {
		s.closed = make(chan struct{})
	}
	return s.closed
}

func (s *StubHTTPServer) ListenAndServe() error {
	s.mu.Lock()
	s.listenCalls++
	done := s.done()
	s.mu.Unlock()

	if s.ListenErr != nil {
		return s.ListenErr
	}
	<-done
	return http.ErrServerClosed
}

func (s *StubHTTPServer) Shutdown(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutdownCalls++
	done := s.done()
	select {
	case <-done:
	default:
		close(done)
	}
	return s.ShutdownErr
}

func (s *StubHTTPServer) Addr() string          { return s.AddrVal }
func (s *StubHTTPServer) Handler() http.Handler { return s.HandlerVal }

// ListenCalls reports how many times ListenAndServe ran.
func (s *StubHTTPServer) ListenCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listenCalls
}

// ShutdownCalls reports how many times Shutdown ran.
func (s *StubHTTPServer) ShutdownCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdownCalls
}

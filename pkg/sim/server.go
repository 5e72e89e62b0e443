package sim

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/symmetry/pkg/framework"
	"github.com/robotalks/symmetry/pkg/l0/link"
	"github.com/robotalks/symmetry/pkg/l0/transport/stream"
	"github.com/robotalks/symmetry/pkg/l0/transport/websocket"
)

// Server serves a simulated device per connection.
type Server struct {
	Heartbeat    time.Duration
	PollInterval time.Duration
}

// ServeTransport runs a device on t until t fails or ctx is done.
func (s *Server) ServeTransport(ctx context.Context, t link.Transport) error {
	l := link.New(t, 0)
	l.Heartbeat = s.Heartbeat
	if err := l.Connect(); err != nil {
		return err
	}
	loop := fx.NewLoop().Add(NewDevice(l))
	if s.PollInterval > 0 {
		loop.Interval = s.PollInterval
	}
	return loop.Run(ctx)
}

// Serve accepts TCP connections until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		go func() {
			t := stream.New(conn)
			defer t.Close()
			s.logDone(conn.RemoteAddr().String(), s.ServeTransport(ctx, t))
		}()
	}
}

// WebsocketHandler serves devices over websocket.
func (s *Server) WebsocketHandler(ctx context.Context) http.Handler {
	return websocket.Handler(func(t *stream.Transport) {
		s.logDone("websocket", s.ServeTransport(ctx, t))
	})
}

func (s *Server) logDone(peer string, err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		glog.Infof("sim: %s closed", peer)
		return
	}
	glog.Infof("sim: %s closed: %v", peer, err)
}

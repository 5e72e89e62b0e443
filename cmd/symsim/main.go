package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"log"
	"net"
	"net/http"
	"time"

	fx "github.com/robotalks/symmetry/pkg/framework"
	"github.com/robotalks/symmetry/pkg/sim"
)

var (
	tcpAddr = ":7700"
	wsAddr  = ""

	server = sim.Server{Heartbeat: time.Second}
)

func init() {
	flag.StringVar(&tcpAddr, "listen", tcpAddr, "TCP listen address, empty disables")
	flag.StringVar(&wsAddr, "ws", wsAddr, "Websocket listen address, empty disables")
	flag.DurationVar(&server.Heartbeat, "heartbeat", server.Heartbeat, "Heartbeat interval, 0 disables")
}

type runFunc func(context.Context) error

func (f runFunc) Run(ctx context.Context) error { return f(ctx) }

func main() {
	flag.Parse()

	r := fx.NewRunner().HandleSignals()
	if tcpAddr != "" {
		ln, err := net.Listen("tcp", tcpAddr)
		if err != nil {
			log.Fatalln(err)
		}
		r.Go(fx.NamedRun("tcp", runFunc(func(ctx context.Context) error {
			return server.Serve(ctx, ln)
		})))
	}
	if wsAddr != "" {
		r.Go(fx.NamedRun("websocket", runFunc(func(ctx context.Context) error {
			srv := &http.Server{Addr: wsAddr, Handler: server.WebsocketHandler(ctx)}
			go func() {
				<-ctx.Done()
				srv.Close()
			}()
			if err := srv.ListenAndServe(); err != http.ErrServerClosed {
				return err
			}
			return ctx.Err()
		})))
	}
	if err := r.Wait(); err != nil && err != context.Canceled {
		log.Fatalln(err)
	}
}

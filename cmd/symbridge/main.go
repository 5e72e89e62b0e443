package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"log"

	"github.com/robotalks/symmetry/pkg/bridge"
	"github.com/robotalks/symmetry/pkg/env"
	fx "github.com/robotalks/symmetry/pkg/framework"
)

func init() {
	env.SetupFlags()
}

func main() {
	flag.Parse()

	conf := env.Default()
	l := conf.MustNewLink()
	if err := l.Connect(); err != nil {
		log.Fatalln(err)
	}
	defer l.Disconnect()

	b, err := bridge.New(conf.MQTTBrokerURL, conf.ID(), l, bridge.Meta{
		Port:      conf.Port,
		BaudRate:  conf.BaudRate,
		Heartbeat: conf.Heartbeat.String(),
	})
	if err != nil {
		log.Fatalln(err)
	}
	loop := fx.NewLoop().Add(b)
	loop.Interval = conf.PollInterval
	loop.RunOrFail()
}

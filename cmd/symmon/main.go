package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/symmetry/pkg/bridge"
)

var (
	mqttURL = "mqtt://localhost:1883/symmetry/"
)

func init() {
	if val := os.Getenv("SYMMETRY_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	opts, prefix, err := bridge.ClientOptionsFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	q := bridge.NewQueue(opts, prefix)
	q.Sub("#", func(topic string, payload []byte) {
		switch {
		case strings.HasSuffix(topic, "/"+bridge.TopicMeta),
			strings.HasSuffix(topic, "/"+bridge.TopicAlive):
			log.Printf("%s: %s", topic, string(payload))
			return
		}
		var rec bridge.Record
		if err := rec.Unmarshal(payload); err != nil {
			log.Printf("%s: bad record: %v", topic, err)
			return
		}
		if rec.Status != 0 {
			log.Printf("%s: %s", topic, rec.Status)
			return
		}
		log.Printf("%s: 0x%02x [% x]", topic, rec.Feature, rec.Payload)
	})
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	<-(chan struct{})(nil)
}

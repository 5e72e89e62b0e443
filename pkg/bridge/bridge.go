package bridge

import (
	"context"
	"encoding/json"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	fx "github.com/robotalks/symmetry/pkg/framework"
	"github.com/robotalks/symmetry/pkg/l0/frame"
	"github.com/robotalks/symmetry/pkg/l0/link"
)

// Topic suffixes under <prefix><device>/.
const (
	TopicMessage = "msg"
	TopicStatus  = "status"
	TopicCommand = "cmd"
	TopicMeta    = "meta"
	TopicAlive   = "alive"
)

// Meta is published retained on TopicMeta while the bridge is online.
type Meta struct {
	Port      string `json:"port"`
	BaudRate  int    `json:"baud"`
	Heartbeat string `json:"heartbeat,omitempty"`
}

// Publisher publishes MQTT messages. Queue implements it.
type Publisher interface {
	PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token
}

// Bridge relays frames between a Link and an MQTT broker.
type Bridge struct {
	Link     *link.Link
	DeviceID string
	Meta     Meta

	Queue     *Queue
	Publisher Publisher

	loop     *fx.Loop
	metaJSON []byte
	alive    bool
	reported bool
}

// New creates a Bridge connecting to brokerURL.
func New(brokerURL, deviceID string, l *link.Link, meta Meta) (*Bridge, error) {
	opts, prefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(prefix+deviceID+"/"+TopicMeta, nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("symmetry:" + deviceID)
	}
	b := &Bridge{
		Link:     l,
		DeviceID: deviceID,
		Meta:     meta,
		Queue:    NewQueue(opts, prefix),
	}
	b.Publisher = b.Queue
	b.Queue.OnConnect = func(*Queue) { b.publishMeta(b.metaJSON) }
	return b, nil
}

func (b *Bridge) topic(suffix string) string {
	return b.DeviceID + "/" + suffix
}

// AddToLoop implements LoopAdder. The bridge polls the link itself and
// runs the MQTT session as a Runnable.
func (b *Bridge) AddToLoop(loop *fx.Loop) {
	b.loop = loop
	b.Link.Handler = link.HandleMessageFunc(b.messageReceived)
	b.Link.Notifier = link.HandleStatusFunc(b.statusReceived)
	loop.AddPoller(b)
}

// Poll implements Poller.
func (b *Bridge) Poll() error {
	if err := b.Link.Poll(); err != nil {
		return err
	}
	b.reportLiveness()
	return nil
}

// Run implements Runnable.
func (b *Bridge) Run(ctx context.Context) error {
	meta, err := json.Marshal(&b.Meta)
	if err != nil {
		return err
	}
	b.metaJSON = meta
	b.Queue.Sub(b.topic(TopicCommand), b.commandReceived)
	if token := b.Queue.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	<-ctx.Done()
	b.publishMeta(nil).Wait()
	b.Queue.Close()
	return ctx.Err()
}

func (b *Bridge) publishMeta(meta []byte) paho.Token {
	return b.Publisher.PubWith(b.topic(TopicMeta), meta, 1, true)
}

func (b *Bridge) messageReceived(m *frame.Message) {
	rec := RecordFromMessage(m)
	b.Publisher.PubWith(b.topic(TopicMessage), rec.Marshal(), 0, false)
}

func (b *Bridge) statusReceived(s frame.Status) {
	rec := Record{Status: s}
	b.Publisher.PubWith(b.topic(TopicStatus), rec.Marshal(), 0, false)
}

func (b *Bridge) commandReceived(topic string, payload []byte) {
	var rec Record
	if err := rec.Unmarshal(payload); err != nil {
		glog.Warningf("%s: bad record: %v", topic, err)
		return
	}
	b.loop.Post(func() {
		if err := rec.SendTo(b.Link); err != nil {
			glog.Errorf("%s: send failed: %v", topic, err)
		}
	})
}

func (b *Bridge) reportLiveness() {
	if b.Link.Heartbeat <= 0 {
		return
	}
	alive := b.Link.IsAlive()
	if b.reported && alive == b.alive {
		return
	}
	b.alive, b.reported = alive, true
	payload := []byte("0")
	if alive {
		payload[0] = '1'
	}
	b.Publisher.PubWith(b.topic(TopicAlive), payload, 1, true)
}

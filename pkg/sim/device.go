// Package sim simulates a peer device for testing hosts without hardware.
package sim

import (
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/symmetry/pkg/framework"
	"github.com/robotalks/symmetry/pkg/l0/frame"
	"github.com/robotalks/symmetry/pkg/l0/link"
)

// Device is a register bank behind a link. A data frame stores its
// payload under the feature; a trigger frame reads the register back as a
// data frame of the same feature, or FAIL if it was never written.
type Device struct {
	Link *link.Link

	lock      sync.RWMutex
	registers map[byte][]byte
}

// NewDevice creates a Device and installs itself as the link handler.
func NewDevice(l *link.Link) *Device {
	d := &Device{Link: l, registers: make(map[byte][]byte)}
	l.Handler = d
	return d
}

// AddToLoop implements LoopAdder.
func (d *Device) AddToLoop(loop *fx.Loop) {
	loop.AddPoller(d.Link)
}

// Register returns a copy of the stored payload.
func (d *Device) Register(feature byte) ([]byte, bool) {
	d.lock.RLock()
	defer d.lock.RUnlock()
	val, ok := d.registers[feature]
	return append([]byte(nil), val...), ok
}

// HandleMessage implements link.MessageHandler.
func (d *Device) HandleMessage(m *frame.Message) {
	feature := m.Feature()
	if m.Len() > 0 {
		d.lock.Lock()
		d.registers[feature] = append([]byte(nil), m.Payload()...)
		d.lock.Unlock()
		return
	}
	val, ok := d.Register(feature)
	if !ok {
		if err := d.Link.SendFAIL(); err != nil {
			glog.Errorf("sim: send FAIL: %v", err)
		}
		return
	}
	out := d.Link.Outgoing()
	out.Purge()
	out.SetFeature(feature)
	if err := out.SetPayload(val); err != nil {
		glog.Errorf("sim: register 0x%02x: %v", feature, err)
		return
	}
	if err := d.Link.SendMessage(); err != nil {
		glog.Errorf("sim: read back 0x%02x: %v", feature, err)
	}
}

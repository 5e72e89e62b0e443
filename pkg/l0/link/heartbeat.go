package link

import "github.com/robotalks/symmetry/pkg/l0/frame"

// DeadFactor is the number of silent heartbeat intervals after which the
// peer is declared dead.
const DeadFactor = 5

type heartbeat struct {
	lastSent uint32
	dead     bool
}

func (h *heartbeat) reset(now uint32) {
	h.lastSent, h.dead = now, false
}

// checkHeartbeat sends HELO when both inbound traffic and the last HELO are
// older than the interval, and stops once the peer has been silent for
// DeadFactor intervals.
func (l *Link) checkHeartbeat(now uint32) error {
	interval := durationMillis(l.Heartbeat)
	if interval == 0 || !l.configured || l.heartbeat.dead {
		return nil
	}
	if now-l.lastMessage > interval && now-l.heartbeat.lastSent > interval {
		if err := l.SendStatus(frame.HELO); err != nil {
			return err
		}
		l.heartbeat.lastSent = now
	}
	if now-l.lastMessage > DeadFactor*interval {
		l.heartbeat.dead = true
	}
	return nil
}

// IsAlive tells if inbound traffic was seen within one heartbeat interval.
func (l *Link) IsAlive() bool {
	return l.Clock.Millis()-l.lastMessage < durationMillis(l.Heartbeat)
}

// HeartbeatDead tells if heartbeats are suspended because the peer has
// been silent too long. Any inbound byte clears it.
func (l *Link) HeartbeatDead() bool {
	return l.heartbeat.dead
}

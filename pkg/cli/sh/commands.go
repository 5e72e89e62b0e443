package sh

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/symmetry/pkg/l0/frame"
	"github.com/robotalks/symmetry/pkg/l0/link"
	"github.com/robotalks/symmetry/pkg/l0/transport/serialport"
)

// ParseByte parses a decimal, 0x hex or 0b binary byte.
func ParseByte(str string) (byte, error) {
	val, err := strconv.ParseUint(str, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid byte %q", str)
	}
	return byte(val), nil
}

// ParseWord parses a 16-bit value.
func ParseWord(str string) (uint16, error) {
	val, err := strconv.ParseUint(str, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid word %q", str)
	}
	return uint16(val), nil
}

func printOK(c *ishell.Context, err error) {
	if err == nil && !ShellFrom(c).OutputJSON {
		c.Println("OK")
	}
}

var (
	// OpenCmd opens a port.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "[PORT]",
		Func: func(c *ishell.Context) {
			var port string
			if len(c.Args) > 0 {
				port = c.Args[0]
			}
			if err := ShellFrom(c).Connect(port); err != nil {
				c.Err(err)
			}
		},
	}

	// CloseCmd closes the current port.
	CloseCmd = ishell.Cmd{
		Name: "close",
		Help: "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name: "ports",
		Help: "",
		Func: func(c *ishell.Context) {
			ports, err := serialport.Ports()
			if err != nil {
				c.Err(err)
				return
			}
			if ports == nil {
				ports = []string{}
			}
			ShellFrom(c).Print(ports, strings.Join(ports, "\n"))
		},
	}

	// SendCmd sends a data frame.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "FEATURE [BYTE...]",
		Func: MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("FEATURE required"))
				return
			}
			feature, err := ParseByte(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			payload := make([]byte, 0, len(c.Args)-1)
			for _, arg := range c.Args[1:] {
				b, err := ParseByte(arg)
				if err != nil {
					c.Err(err)
					return
				}
				payload = append(payload, b)
			}
			printOK(c, DoLink(c, func(l *link.Link) error {
				out := l.Outgoing()
				out.Purge()
				if err := out.SetPayload(payload); err != nil {
					return err
				}
				out.SetFeature(feature)
				return l.SendMessage()
			}))
		}),
	}

	// SendWordCmd sends a single word frame.
	SendWordCmd = ishell.Cmd{
		Name:    "sendw",
		Aliases: []string{"w"},
		Help:    "FEATURE WORD",
		Func: MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("FEATURE and WORD required"))
				return
			}
			feature, err := ParseByte(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			word, err := ParseWord(c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			printOK(c, DoLink(c, func(l *link.Link) error {
				return l.SendWord(feature, word)
			}))
		}),
	}

	// TriggerCmd sends a zero-length frame.
	TriggerCmd = ishell.Cmd{
		Name:    "trigger",
		Aliases: []string{"t"},
		Help:    "FEATURE",
		Func: MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("FEATURE required"))
				return
			}
			feature, err := ParseByte(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			printOK(c, DoLink(c, func(l *link.Link) error {
				return l.SendTrigger(feature)
			}))
		}),
	}

	// StatusCmd sends a status frame.
	StatusCmd = ishell.Cmd{
		Name: "status",
		Help: "CODE (HELO, ACK, NACK, FAIL, ... or 0xF0-0xFF)",
		Func: MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("CODE required"))
				return
			}
			code, err := frame.ParseStatus(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			printOK(c, DoLink(c, func(l *link.Link) error {
				return l.SendStatus(code)
			}))
		}),
	}

	// StatsCmd prints link counters.
	StatsCmd = ishell.Cmd{
		Name: "stats",
		Help: "",
		Func: MustBeConnected(func(c *ishell.Context) {
			var stats link.Stats
			if DoLink(c, func(l *link.Link) error {
				stats = l.Stats()
				return nil
			}) != nil {
				return
			}
			ShellFrom(c).Print(&stats, fmt.Sprintf(
				"succeeded=%d failed=%d checksum=%d framing=%d timeout=%d overflow=%d",
				stats.Succeeded, stats.Failed, stats.ChecksumErrors,
				stats.FramingErrors, stats.Timeouts, stats.Overflows))
		}),
	}

	// AliveCmd prints peer liveness.
	AliveCmd = ishell.Cmd{
		Name: "alive",
		Help: "",
		Func: MustBeConnected(func(c *ishell.Context) {
			var alive, dead bool
			if DoLink(c, func(l *link.Link) error {
				alive, dead = l.IsAlive(), l.HeartbeatDead()
				return nil
			}) != nil {
				return
			}
			text := "alive"
			switch {
			case dead:
				text = "dead"
			case !alive:
				text = "silent"
			}
			ShellFrom(c).Print(map[string]bool{"alive": alive, "dead": dead}, text)
		}),
	}
)

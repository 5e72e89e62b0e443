package env

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/robotalks/symmetry/pkg/l0/link"
	"github.com/robotalks/symmetry/pkg/l0/transport/loopback"
	"github.com/robotalks/symmetry/pkg/l0/transport/serialport"
	"github.com/robotalks/symmetry/pkg/l0/transport/stream"
	"github.com/robotalks/symmetry/pkg/l0/transport/tarm"
	"github.com/robotalks/symmetry/pkg/l0/transport/websocket"
)

// Config provides common options to set up a link.
type Config struct {
	// Port selects the transport, e.g.
	// /dev/ttyUSB0, serial:///dev/ttyUSB0, tarm://COM3, tcp://host:port,
	// ws://host:port/path, loop://
	Port         string
	BaudRate     int
	Heartbeat    time.Duration
	FrameTimeout time.Duration
	PollInterval time.Duration

	// MQTTBrokerURL specifies the MQTT broker for bridging.
	// e.g. mqtt://host:port/topic-prefix/
	MQTTBrokerURL string
	DeviceID      string
}

// ErrNoPort is returned when no port is configured.
var ErrNoPort = errors.New("port not specified")

var defaultConfig = Config{
	BaudRate:      115200,
	Heartbeat:     time.Second,
	FrameTimeout:  link.DefaultFrameTimeout,
	PollInterval:  10 * time.Millisecond,
	MQTTBrokerURL: "mqtt://localhost:1883/symmetry/",
}

func init() {
	if err := defaultConfig.LoadEnv(os.LookupEnv); err != nil {
		log.Fatalln(err)
	}
}

// LoadEnv overrides fields from SYMMETRY_* variables.
func (c *Config) LoadEnv(lookup func(string) (string, bool)) error {
	if val, ok := lookup("SYMMETRY_PORT"); ok {
		c.Port = val
	}
	if val, ok := lookup("SYMMETRY_BAUD"); ok {
		baud, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("SYMMETRY_BAUD: %w", err)
		}
		c.BaudRate = baud
	}
	if val, ok := lookup("SYMMETRY_HEARTBEAT"); ok {
		dur, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("SYMMETRY_HEARTBEAT: %w", err)
		}
		c.Heartbeat = dur
	}
	if val, ok := lookup("SYMMETRY_MQTT_URL"); ok {
		c.MQTTBrokerURL = val
	}
	if val, ok := lookup("SYMMETRY_ID"); ok {
		c.DeviceID = val
	}
	return nil
}

// SetupFlags sets command line flags on the default config.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Port, "port", defaultConfig.Port, "Port: path or serial://, tarm://, tcp://, ws://, loop:// URL")
	flag.IntVar(&defaultConfig.BaudRate, "baud", defaultConfig.BaudRate, "Baud rate")
	flag.DurationVar(&defaultConfig.Heartbeat, "heartbeat", defaultConfig.Heartbeat, "Heartbeat interval, 0 disables")
	flag.DurationVar(&defaultConfig.FrameTimeout, "frame-timeout", defaultConfig.FrameTimeout, "Frame timeout")
	flag.DurationVar(&defaultConfig.PollInterval, "poll", defaultConfig.PollInterval, "Poll interval")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL")
	flag.StringVar(&defaultConfig.DeviceID, "id", defaultConfig.DeviceID, "Device ID, defaults to machine ID")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a copy of the default config.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// ID returns DeviceID, falling back to the machine ID.
func (c *Config) ID() string {
	if c.DeviceID != "" {
		return c.DeviceID
	}
	return MachineID()
}

// ParsePort splits Port into scheme and address. A bare path is serial.
func (c *Config) ParsePort() (scheme, addr string, err error) {
	if c.Port == "" {
		return "", "", ErrNoPort
	}
	u, err := url.Parse(c.Port)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// bare paths, including Windows drive letters and COM ports.
		return "serial", c.Port, nil
	}
	switch u.Scheme {
	case "serial", "tarm":
		addr = u.Host + u.Path
	case "tcp":
		addr = u.Host
	case "ws", "wss":
		addr = c.Port
	case "loop":
	default:
		return "", "", fmt.Errorf("unknown port scheme %q", u.Scheme)
	}
	if addr == "" && u.Scheme != "loop" {
		return "", "", fmt.Errorf("port %q: address missing", c.Port)
	}
	return u.Scheme, addr, nil
}

// OpenTransport creates the transport selected by Port. Device transports
// are opened by link.Connect; network ones are dialed here.
func (c *Config) OpenTransport() (link.Transport, error) {
	scheme, addr, err := c.ParsePort()
	if err != nil {
		return nil, err
	}
	switch scheme {
	case "serial":
		return serialport.New(addr), nil
	case "tarm":
		return tarm.New(addr), nil
	case "tcp":
		return stream.NewDevice(func(int) (io.ReadWriteCloser, error) {
			return net.Dial("tcp", addr)
		}), nil
	case "ws", "wss":
		origin := "http://localhost/"
		if scheme == "wss" {
			origin = "https://localhost/"
		}
		return stream.NewDevice(func(int) (io.ReadWriteCloser, error) {
			return websocket.Conn(addr, origin)
		}), nil
	default:
		return loopback.Echo(), nil
	}
}

// NewLink creates a link over the selected transport. It is not connected.
func (c *Config) NewLink() (*link.Link, error) {
	t, err := c.OpenTransport()
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", c.Port, err)
	}
	l := link.New(t, c.BaudRate)
	l.Heartbeat = c.Heartbeat
	if c.FrameTimeout > 0 {
		l.FrameTimeout = c.FrameTimeout
	}
	return l, nil
}

// MustNewLink creates a link and fails on error.
func (c *Config) MustNewLink() *link.Link {
	l, err := c.NewLink()
	if err != nil {
		log.Fatalln(err)
	}
	return l
}

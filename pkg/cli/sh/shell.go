package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/abiosoft/ishell"

	fx "github.com/robotalks/symmetry/pkg/framework"
	"github.com/robotalks/symmetry/pkg/env"
	"github.com/robotalks/symmetry/pkg/l0/frame"
	"github.com/robotalks/symmetry/pkg/l0/link"
)

// Shell provides an ishell backed interactive shell over a link.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool

	Shell  *ishell.Shell
	Config *env.Config
	Conn   *ConnLoop
}

// ConnLoop is a running loop polling a connected link.
type ConnLoop struct {
	Ctx    context.Context
	Cancel func()
	Port   string
	Link   *link.Link
	Loop   *fx.Loop
}

// CommandTimeout limits how long a command waits for the loop.
const CommandTimeout = time.Second

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// ErrNotConnected is reported by commands requiring an open port.
	ErrNotConnected = fmt.Errorf("not connected")

	evalOnly   bool
	outputJSON bool

	commands = []*ishell.Cmd{
		&OpenCmd,
		&CloseCmd,
		&PortsCmd,
		&SendCmd,
		&SendWordCmd,
		&TriggerCmd,
		&StatusCmd,
		&StatsCmd,
		&AliveCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds registers extra commands, used during init.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Shell:       ishell.New(),
		Config:      conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps a command func which requires an open port.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Conn == nil {
			c.Err(ErrNotConnected)
			return
		}
		fn(c)
	}
}

// DoLink runs fn on the loop goroutine and reports the result.
func DoLink(c *ishell.Context, fn func(*link.Link) error) error {
	s := ShellFrom(c)
	if s.Conn == nil {
		c.Err(ErrNotConnected)
		return ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(s.Conn.Ctx, CommandTimeout)
	defer cancel()
	err := s.Conn.Loop.Do(ctx, func() error { return fn(s.Conn.Link) })
	if err != nil {
		c.Err(err)
	}
	return err
}

// Print prints v as JSON when requested, otherwise with text.
func (s *Shell) Print(v interface{}, text string) {
	if s.OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			s.Shell.Println(err)
			return
		}
		s.Shell.Println(string(out))
		return
	}
	s.Shell.Println(text)
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

type receivedMessage struct {
	Feature byte   `json:"feature"`
	Payload []byte `json:"payload"`
}

type receivedStatus struct {
	Status string `json:"status"`
}

// Connect opens port and starts polling it. An empty port uses the
// configured one.
func (s *Shell) Connect(port string) error {
	conf := *s.Config
	if port != "" {
		conf.Port = port
	}
	l, err := conf.NewLink()
	if err != nil {
		return err
	}
	l.Handler = link.HandleMessageFunc(func(m *frame.Message) {
		s.Print(&receivedMessage{Feature: m.Feature(), Payload: m.Payload()},
			fmt.Sprintf("RCV 0x%02x [% x]", m.Feature(), m.Payload()))
	})
	l.Notifier = link.HandleStatusFunc(func(st frame.Status) {
		s.Print(&receivedStatus{Status: st.String()}, "RCV "+st.String())
	})
	s.Disconnect()
	if err = l.Connect(); err != nil {
		return fmt.Errorf("connect %q: %w", conf.Port, err)
	}

	conn := &ConnLoop{Port: conf.Port, Link: l, Loop: fx.NewLoop()}
	conn.Loop.Interval = conf.PollInterval
	conn.Loop.AddPoller(l)
	conn.Ctx, conn.Cancel = context.WithCancel(context.Background())
	s.Conn = conn
	go func() {
		if err := conn.Loop.Run(conn.Ctx); err != nil && err != context.Canceled {
			s.Shell.Printf("%s: %v\n", conn.Port, err)
		}
	}()
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", conf.Port))
	return nil
}

// Disconnect closes the current port.
func (s *Shell) Disconnect() {
	conn := s.Conn
	if conn == nil {
		return
	}
	ctx, cancel := context.WithTimeout(conn.Ctx, CommandTimeout)
	conn.Loop.Do(ctx, conn.Link.Disconnect)
	cancel()
	conn.Cancel()
	s.Conn = nil
	s.Shell.SetPrompt(unconnectedPrompt)
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect && s.Config.Port != "" {
		if s.Interactive {
			s.Shell.Printf("Opening %s ...\n", s.Config.Port)
		}
		if err := s.Connect(""); err != nil {
			log.Fatalln(err)
		}
	}
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(env.Default()).WithAutoConnect(true).Run(flag.Args()...)
}

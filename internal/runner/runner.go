package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/lancomm/pkg/delivery"
	"github.com/projectdiscovery/lancomm/pkg/discovery"
	"github.com/projectdiscovery/lancomm/pkg/identity"
	"github.com/projectdiscovery/lancomm/pkg/inbox"
	"github.com/projectdiscovery/lancomm/pkg/netaddr"
	"github.com/projectdiscovery/lancomm/pkg/peers"
	"github.com/projectdiscovery/lancomm/pkg/protocol"
	"github.com/projectdiscovery/lancomm/pkg/transport"
	errorutil "github.com/projectdiscovery/utils/errors"
)

// maxLineSize bounds a single line read from the terminal
const maxLineSize = 2 * protocol.MaxMessageSize

// Runner contains the internal logic of a node. Everything touching the
// peer directory runs on the goroutine executing Run.
type Runner struct {
	options    *Options
	identifier string
	sockets    *transport.Sockets
	engine     *delivery.Engine
	dispatcher *discovery.Dispatcher
	inbox      *inbox.Inbox
	lock       *lockFile

	input  io.Reader
	output io.Writer

	closeOnce sync.Once
}

// resolveInterface looks up the named interface, or picks the first usable
// one when no name is given
func resolveInterface(name string) (*netaddr.Interface, error) {
	if name == "" {
		return netaddr.DefaultInterface()
	}
	return netaddr.LookupInterface(name)
}

// NewRunner acquires the interface lock and opens the transports
func NewRunner(options *Options) (*Runner, error) {
	ctx := context.Background()

	identifier, err := identity.Local(ctx, options.Username)
	if err != nil {
		return nil, errorutil.NewWithErr(err).Msgf("could not build user identifier")
	}

	iface, err := resolveInterface(options.Interface)
	if err != nil {
		return nil, errorutil.NewWithErr(err).Msgf("could not use interface %s", options.Interface)
	}
	options.Interface = iface.Name

	lock, err := acquireLock(lockPath(options.LockDir, iface.Name, options.Port))
	if err != nil {
		return nil, errorutil.NewWithErr(err).Msgf("could not obtain lock file in %s", options.LockDir)
	}

	gologger.Verbose().Msgf("using interface %s (index %d, ipv4 %s, link-local %s)", iface.Name, iface.Index, iface.IPv4, iface.LinkLocal)
	if !iface.IPv4.IsValid() && !options.DisableIPv4 {
		gologger.Warning().Msgf("interface %s has no IPv4 address", iface.Name)
	}

	sockets, err := transport.Open(ctx, transport.Config{
		Interface:   iface.Name,
		Port:        options.Port,
		Group4:      options.group4,
		Group6:      options.group6,
		DisableIPv4: options.DisableIPv4,
		DisableIPv6: options.DisableIPv6,
	})
	if err != nil {
		_ = lock.Release()
		return nil, errorutil.NewWithErr(err).Msgf("could not start UDP communication")
	}

	r := &Runner{
		options:    options,
		identifier: identifier,
		sockets:    sockets,
		engine:     delivery.New(&delivery.Options{PrintErrors: options.Verbose}),
		inbox:      inbox.New(options.InboxSize, 0),
		lock:       lock,
		input:      os.Stdin,
		output:     os.Stdout,
	}
	nodeCtx := &discovery.Context{
		Identifier: identifier,
		Conn4:      sockets.Conn4,
		Conn6:      sockets.Conn6,
		Group4:     options.group4,
		Group6:     options.group6,
		Port:       options.Port,
		Ifindex:    iface.Index,
		Behaviours: discovery.Behaviours{
			Scan:    options.scanBehaviour,
			Message: options.messageBehaviour,
		},
	}
	r.dispatcher = discovery.New(nodeCtx, r.engine, peers.New(options.Capacity), r.onMessage)
	return r, nil
}

// Run reads the sockets and the terminal until ctx is cancelled or the
// user exits
func (r *Runner) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	r.printf("This node is identified as %s\n", au.Bold(r.identifier))
	r.printf("For list of commands type %s\n\n", au.Cyan("/help"))

	datagrams := make(chan *delivery.Datagram)
	var wg sync.WaitGroup
	for _, conn := range []net.PacketConn{r.sockets.Conn4, r.sockets.Conn6} {
		if conn == nil {
			continue
		}
		wg.Add(1)
		go func(conn net.PacketConn) {
			defer wg.Done()
			r.receive(ctx, conn, datagrams)
		}(conn)
	}

	lines := make(chan string)
	go r.readInput(ctx, lines)

	defer func() {
		cancel()
		r.Close()
		wg.Wait()
	}()

	if r.options.ScanOnStart {
		r.scan()
	}
	return r.loop(ctx, datagrams, lines)
}

func (r *Runner) loop(ctx context.Context, datagrams <-chan *delivery.Datagram, lines <-chan string) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case dgram := <-datagrams:
			r.handleDatagram(dgram)
		case line, ok := <-lines:
			if !ok {
				// terminal closed, keep serving peers until cancelled
				lines = nil
				continue
			}
			if r.handleLine(line) == commandExit {
				return nil
			}
		}
	}
}

// receive forwards decoded datagrams from conn until it is closed
func (r *Runner) receive(ctx context.Context, conn net.PacketConn, out chan<- *delivery.Datagram) {
	for {
		dgram, err := r.engine.Receive(conn)
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, net.ErrClosed) {
				gologger.Warning().Msgf("stopped receiving on %s: %s", conn.LocalAddr(), err)
			}
			return
		}
		if dgram == nil {
			continue
		}
		select {
		case out <- dgram:
		case <-ctx.Done():
			return
		}
	}
}

func (r *Runner) readInput(ctx context.Context, lines chan<- string) {
	defer close(lines)

	scanner := bufio.NewScanner(r.input)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
	if err := scanner.Err(); err != nil {
		gologger.Warning().Msgf("could not read input: %s", err)
	}
}

func (r *Runner) handleDatagram(dgram *delivery.Datagram) {
	action, err := r.dispatcher.Dispatch(dgram.Message, dgram.Source)
	if err != nil {
		gologger.Verbose().Msgf("could not process %s from %s: %s", dgram.Message.Type, dgram.Source, err)
		return
	}
	switch action {
	case discovery.ActionAnswered, discovery.ActionRecorded:
		gologger.Verbose().Msgf("peer %q seen at %s", dgram.Message.Payload, dgram.Source)
	case discovery.ActionRemoved:
		gologger.Info().Msgf("peer at %s disconnected", dgram.Source)
	}
}

// onMessage stores and prints a received text message
func (r *Runner) onMessage(msg discovery.Message) {
	entry := r.inbox.Add(msg)
	r.printf("%s %s: %s\n", au.Gray(12, entry.Received.Format("15:04:05")), au.Green(entry.From), entry.Text)
}

// Close tells every known peer this node is leaving and releases the
// sockets and the lock. It must not run concurrently with Run's loop.
func (r *Runner) Close() {
	r.closeOnce.Do(func() {
		if r.dispatcher != nil {
			reached := r.dispatcher.DisconnectAll()
			gologger.Info().Msgf("Sent disconnects to %d peers", reached)
		}
		if r.sockets != nil {
			if err := r.sockets.Close(); err != nil {
				gologger.Verbose().Msgf("could not close sockets: %s", err)
			}
		}
		if r.lock != nil {
			if err := r.lock.Release(); err != nil {
				gologger.Verbose().Msgf("could not release lock: %s", err)
			}
		}
	})
}

func (r *Runner) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(r.output, format, args...)
}

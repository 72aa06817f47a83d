package runner

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"

	"github.com/logrusorgru/aurora/v4"
	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/formatter"
	"github.com/projectdiscovery/gologger/levels"
	"github.com/projectdiscovery/lancomm/pkg/delivery"
	"github.com/projectdiscovery/lancomm/pkg/discovery"
	"github.com/projectdiscovery/lancomm/pkg/identity"
	"github.com/projectdiscovery/lancomm/pkg/inbox"
	"github.com/projectdiscovery/lancomm/pkg/peers"
	"github.com/projectdiscovery/lancomm/pkg/version"
	envutil "github.com/projectdiscovery/utils/env"
)

var au = aurora.New(aurora.WithColors(true))

// DefaultLockDir is where the per-interface lock file is created
const DefaultLockDir = "/var/lock"

var (
	InterfaceEnv = envutil.GetEnvOrDefault("LANCOMM_INTERFACE", "")
	UsernameEnv  = envutil.GetEnvOrDefault("LANCOMM_USERNAME", "")
	LockDirEnv   = envutil.GetEnvOrDefault("LANCOMM_LOCK_DIR", DefaultLockDir)
)

// Options contains the configuration options for a node
type Options struct {
	Interface string
	Username  string

	Port        int
	Group4      string
	Group6      string
	Capacity    int
	InboxSize   int
	DisableIPv4 bool
	DisableIPv6 bool

	ScanBehaviour    string
	MessageBehaviour string

	LockDir     string
	ScanOnStart bool

	Verbose bool
	Silent  bool
	NoColor bool
	Version bool

	// resolved by ValidateOptions
	group4           netip.Addr
	group6           netip.Addr
	scanBehaviour    delivery.SendBehaviour
	messageBehaviour delivery.SendBehaviour
}

// ParseOptions parses the command line flags provided by a user
func ParseOptions() *Options {
	options := &Options{}
	flagSet := goflags.NewFlagSet()

	flagSet.SetDescription(`lancomm discovers peers on the local network segment over IPv4 and IPv6 multicast and exchanges short messages with them`)

	behaviours := strings.Join(delivery.BehaviourNames(), ", ")

	flagSet.CreateGroup("input", "Input",
		flagSet.StringVarP(&options.Interface, "interface", "i", InterfaceEnv, "network interface to communicate on (default first multicast capable interface)"),
		flagSet.StringVarP(&options.Username, "username", "u", UsernameEnv, "user name announced to peers (max 62 bytes)"),
	)

	flagSet.CreateGroup("network", "Network",
		flagSet.IntVarP(&options.Port, "port", "p", discovery.DefaultPort, "udp port to listen and send on"),
		flagSet.StringVarP(&options.Group4, "group4", "g4", discovery.DefaultGroup4.String(), "ipv4 multicast group used for scans"),
		flagSet.StringVarP(&options.Group6, "group6", "g6", discovery.DefaultGroup6.String(), "ipv6 multicast group used for scans"),
		flagSet.IntVarP(&options.Capacity, "capacity", "c", peers.DefaultCapacity, "maximum number of peers to track"),
		flagSet.IntVarP(&options.InboxSize, "inbox-size", "is", inbox.DefaultSize, "number of received messages kept for /inbox"),
		flagSet.BoolVarP(&options.DisableIPv4, "disable-ipv4", "d4", false, "do not open the ipv4 transport"),
		flagSet.BoolVarP(&options.DisableIPv6, "disable-ipv6", "d6", false, "do not open the ipv6 transport"),
	)

	flagSet.CreateGroup("behaviour", "Behaviour",
		flagSet.StringVarP(&options.ScanBehaviour, "scan-behaviour", "sb", discovery.DefaultBehaviours.Scan.String(), fmt.Sprintf("stacks used for scans (%s)", behaviours)),
		flagSet.StringVarP(&options.MessageBehaviour, "message-behaviour", "mb", discovery.DefaultBehaviours.Message.String(), fmt.Sprintf("stacks used for messages (%s)", behaviours)),
	)

	flagSet.CreateGroup("runtime", "Runtime",
		flagSet.StringVarP(&options.LockDir, "lock-dir", "ld", LockDirEnv, "directory for the per-interface lock file"),
		flagSet.BoolVarP(&options.ScanOnStart, "scan-on-start", "s", false, "scan for peers right after startup"),
	)

	flagSet.CreateGroup("debug", "Debug",
		flagSet.BoolVar(&options.Version, "version", false, "show version of the project"),
		flagSet.BoolVarP(&options.Verbose, "verbose", "v", false, "show verbose output"),
		flagSet.BoolVar(&options.Silent, "silent", false, "show only messages and command output"),
		flagSet.BoolVarP(&options.NoColor, "no-color", "nc", false, "disable output content coloring (ANSI escape codes)"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("%s\n", err)
	}

	// configure aurora for logging
	au = aurora.New(aurora.WithColors(true))

	options.configureOutput()

	showBanner()

	if options.Version {
		gologger.Info().Msgf("Current Version: %s\n", version.GetVersion())
		os.Exit(0)
	}

	if err := options.ValidateOptions(); err != nil {
		gologger.Fatal().Msgf("Program exiting: %s\n", err)
	}
	return options
}

// ValidateOptions checks the options and resolves the parsed values
func (options *Options) ValidateOptions() error {
	if err := identity.ValidateUsername(options.Username); err != nil {
		return fmt.Errorf("invalid username %q: %w", options.Username, err)
	}
	if options.Verbose && options.Silent {
		return errors.New("both verbose and silent mode specified")
	}
	if options.DisableIPv4 && options.DisableIPv6 {
		return errors.New("both ipv4 and ipv6 transports are disabled")
	}
	if options.Port <= 0 || options.Port > 65535 {
		return fmt.Errorf("invalid port %d", options.Port)
	}
	if options.Capacity <= 0 {
		return fmt.Errorf("invalid peer capacity %d", options.Capacity)
	}

	var err error
	if options.group4, err = parseGroup(options.Group4, false); err != nil {
		return err
	}
	if options.group6, err = parseGroup(options.Group6, true); err != nil {
		return err
	}
	if options.scanBehaviour, err = delivery.ParseSendBehaviour(options.ScanBehaviour); err != nil {
		return fmt.Errorf("scan behaviour: %w", err)
	}
	if options.messageBehaviour, err = delivery.ParseSendBehaviour(options.MessageBehaviour); err != nil {
		return fmt.Errorf("message behaviour: %w", err)
	}
	if options.LockDir == "" {
		options.LockDir = DefaultLockDir
	}
	return nil
}

func parseGroup(value string, ipv6 bool) (netip.Addr, error) {
	group, err := netip.ParseAddr(strings.TrimSpace(value))
	if err != nil {
		return netip.Addr{}, fmt.Errorf("invalid multicast group %q: %w", value, err)
	}
	if !group.IsMulticast() || group.Is4In6() || group.Is6() != ipv6 {
		family := "ipv4"
		if ipv6 {
			family = "ipv6"
		}
		return netip.Addr{}, fmt.Errorf("%s is not an %s multicast group", value, family)
	}
	return group, nil
}

// configureOutput configures the output on the screen
func (options *Options) configureOutput() {
	// If the user desires verbose output, show verbose output
	if options.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	if options.NoColor {
		gologger.DefaultLogger.SetFormatter(formatter.NewCLI(true))
		au = aurora.New(aurora.WithColors(false))
	}
	if options.Silent {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	}
}

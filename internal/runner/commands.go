package runner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/projectdiscovery/lancomm/pkg/discovery"
	"github.com/projectdiscovery/lancomm/pkg/peers"
	sliceutil "github.com/projectdiscovery/utils/slice"
)

type commandResult int

const (
	commandOK commandResult = iota
	commandExit
	commandUnknown
	commandUsage
	commandIgnored
)

type command struct {
	names []string
	usage string
	help  string
	run   func(r *Runner, args string) commandResult
}

var commands []command

func init() {
	commands = []command{
		{names: []string{"/help", "?"}, help: "prints information about available commands", run: (*Runner).cmdHelp},
		{names: []string{"/exit"}, help: "disconnects from all peers and exits", run: (*Runner).cmdExit},
		{names: []string{"/clear"}, help: "forgets all peers without notifying them", run: (*Runner).cmdClear},
		{names: []string{"/list", "/peers"}, help: "prints known peers", run: (*Runner).cmdList},
		{names: []string{"/scan"}, help: "scans the network in search of peers", run: (*Runner).cmdScan},
		{names: []string{"/send"}, usage: "/send [PEER ID] [MESSAGE]", help: "sends a message to a peer", run: (*Runner).cmdSend},
		{names: []string{"/inbox"}, usage: "/inbox [COUNT]", help: "prints recently received messages", run: (*Runner).cmdInbox},
		{names: []string{"/disconnect"}, help: "disconnects from all peers", run: (*Runner).cmdDisconnect},
		{names: []string{"/whoami"}, help: "prints own user identifier", run: (*Runner).cmdWhoami},
	}
}

// parseCommand splits a line into the command name and its arguments
func parseCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	name, args, _ := strings.Cut(line, " ")
	return name, strings.TrimSpace(args)
}

func lookupCommand(name string) (command, bool) {
	for _, cmd := range commands {
		if sliceutil.Contains(cmd.names, name) {
			return cmd, true
		}
	}
	return command{}, false
}

// handleLine runs a single line typed by the user. Lines that are not
// commands are ignored.
func (r *Runner) handleLine(line string) commandResult {
	name, args := parseCommand(line)
	if name == "" || (!strings.HasPrefix(name, "/") && name != "?") {
		return commandIgnored
	}
	cmd, ok := lookupCommand(name)
	if !ok {
		r.printf("Unknown command. See %s for help.\n", au.Cyan("/help"))
		return commandUnknown
	}
	result := cmd.run(r, args)
	if result == commandUsage {
		r.printf("Usage: %s\n", cmd.usage)
	}
	return result
}

func (r *Runner) cmdHelp(_ string) commandResult {
	for _, cmd := range commands {
		r.printf("%s - %s\n", au.Cyan(fmt.Sprintf("%-18s", strings.Join(cmd.names, ", "))), cmd.help)
		if cmd.usage != "" {
			r.printf("%-18s   usage: %s\n", "", cmd.usage)
		}
	}
	return commandOK
}

func (r *Runner) cmdExit(_ string) commandResult {
	r.printf("Exiting...\n")
	return commandExit
}

func (r *Runner) cmdClear(_ string) commandResult {
	r.dispatcher.Directory().ClearAll()
	r.printf("Cleared all peers.\n")
	return commandOK
}

func (r *Runner) cmdList(_ string) commandResult {
	entries := r.dispatcher.Directory().Live()
	if len(entries) == 0 {
		r.printf("No peers detected yet.\n")
		return commandOK
	}
	for _, entry := range entries {
		r.printf("Peer %d: %s\n", au.Bold(entry.Slot), au.Green(entry.Identifier))
		if entry.IPv4.Present() {
			r.printf("  IPv4 Address: %s (seen: %s)\n", entry.IPv4.Addr, formatSeen(entry.IPv4))
		}
		if entry.IPv6.Present() {
			r.printf("  IPv6 Address: %s (seen: %s)\n", entry.IPv6.Addr, formatSeen(entry.IPv6))
		}
	}
	return commandOK
}

func formatSeen(s peers.Sighting) string {
	return s.LastSeen.Local().Format(time.DateTime)
}

func (r *Runner) cmdScan(_ string) commandResult {
	r.scan()
	return commandOK
}

func (r *Runner) scan() {
	status, err := r.dispatcher.Scan()
	if err != nil {
		r.printf("%s could not scan: %s\n", au.Red("[ERR]"), err)
		return
	}
	behaviour := r.dispatcher.Context().Behaviours.Scan
	if !status.Succeeded(behaviour) {
		r.printf("%s scan not fully sent (%s)\n", au.Yellow("[WRN]"), status)
		return
	}
	r.printf("Sent scans.\n")
}

func (r *Runner) cmdSend(args string) commandResult {
	id, text, _ := strings.Cut(args, " ")
	text = strings.TrimSpace(text)
	if id == "" || text == "" {
		return commandUsage
	}
	slot, err := strconv.Atoi(id)
	if err != nil {
		return commandUsage
	}

	status, err := r.dispatcher.SendText(slot, text)
	switch {
	case errors.Is(err, discovery.ErrUnknownPeer):
		r.printf("%s no peer with id %d, see %s\n", au.Red("[ERR]"), slot, au.Cyan("/list"))
		return commandOK
	case err != nil:
		r.printf("%s %s\n", au.Red("[ERR]"), err)
		return commandOK
	}
	if !status.Succeeded(r.dispatcher.Context().Behaviours.Message) {
		r.printf("%s message to peer %d not sent (%s)\n", au.Red("[ERR]"), slot, status)
	}
	return commandOK
}

func (r *Runner) cmdInbox(args string) commandResult {
	count := 0
	if args != "" {
		n, err := strconv.Atoi(args)
		if err != nil || n < 0 {
			return commandUsage
		}
		count = n
	}
	entries := r.inbox.Recent(count)
	if len(entries) == 0 {
		r.printf("No messages received yet.\n")
		return commandOK
	}
	for _, entry := range entries {
		r.printf("%s %s: %s\n", au.Gray(12, entry.Received.Format(time.DateTime)), au.Green(entry.From), entry.Text)
	}
	return commandOK
}

func (r *Runner) cmdDisconnect(_ string) commandResult {
	r.printf("Sending disconnects to all peers.\n")
	reached := r.dispatcher.DisconnectAll()
	r.printf("Reached %d peers, cleared all peers.\n", reached)
	return commandOK
}

func (r *Runner) cmdWhoami(_ string) commandResult {
	r.printf("You are: %q\n", r.identifier)
	return commandOK
}

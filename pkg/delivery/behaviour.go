package delivery

import (
	"fmt"
	"strings"
)

// SendBehaviour selects the stacks used for a send and their fallback order
type SendBehaviour uint8

const (
	SendIPv4Only SendBehaviour = iota
	SendIPv6Only
	SendIPv4First
	SendIPv6First
	// SendBoth attempts both stacks and requires both to succeed
	SendBoth
)

var behaviourNames = map[SendBehaviour]string{
	SendIPv4Only:  "ipv4-only",
	SendIPv6Only:  "ipv6-only",
	SendIPv4First: "ipv4-first",
	SendIPv6First: "ipv6-first",
	SendBoth:      "both",
}

func (b SendBehaviour) String() string {
	if name, ok := behaviourNames[b]; ok {
		return name
	}
	return fmt.Sprintf("behaviour(%d)", uint8(b))
}

// ParseSendBehaviour parses the names returned by String
func ParseSendBehaviour(value string) (SendBehaviour, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for behaviour, name := range behaviourNames {
		if name == value {
			return behaviour, nil
		}
	}
	return 0, fmt.Errorf("invalid send behaviour %q (must be one of %s)", value, strings.Join(BehaviourNames(), ", "))
}

// BehaviourNames lists the accepted behaviour names in declaration order
func BehaviourNames() []string {
	names := make([]string, 0, len(behaviourNames))
	for b := SendIPv4Only; b <= SendBoth; b++ {
		names = append(names, behaviourNames[b])
	}
	return names
}

func (b SendBehaviour) triesIPv4First() bool {
	return b == SendIPv4Only || b == SendIPv4First || b == SendBoth
}

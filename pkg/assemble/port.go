package assemble

import (
	"fmt"
	"strconv"
	"strings"
)

// PortError reports a malformed PublishPort=/ExposeHostPort= value.
type PortError struct {
	Value string
	Msg   string
}

func (e *PortError) Error() string { return fmt.Sprintf("invalid port %q: %s", e.Value, e.Msg) }

// PublishPort is a parsed PublishPort= value, per the
// "[IP:][HOSTPORT:]CONTAINERPORT[/PROTO]" grammar.
type PublishPort struct {
	IP            string
	HostPort      string
	ContainerPort string
	Protocol      string // "", "tcp", "udp", or "sctp"
}

// ParsePublishPort splits a PublishPort= value into its components. A
// value containing '$' is assumed to be a systemd specifier or an
// environment expansion resolved at unit-start time and is returned with
// ContainerPort set to the whole value verbatim, skipping validation.
func ParsePublishPort(raw string) (PublishPort, error) {
	if strings.ContainsAny(raw, "$") {
		return PublishPort{ContainerPort: raw}, nil
	}

	rest := raw
	var pp PublishPort

	if proto, body, ok := cutProtocol(rest); ok {
		pp.Protocol = proto
		rest = body
	}

	if strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return PublishPort{}, &PortError{Value: raw, Msg: "unterminated IPv6 bracket"}
		}
		pp.IP = rest[1:end]
		rest = strings.TrimPrefix(rest[end+1:], ":")
		if rest == "" {
			return PublishPort{}, &PortError{Value: raw, Msg: "missing port after IPv6 address"}
		}
	}

	parts := strings.Split(rest, ":")
	switch len(parts) {
	case 1:
		pp.ContainerPort = parts[0]
	case 2:
		if pp.IP == "" {
			pp.HostPort = parts[0]
		} else {
			pp.HostPort = parts[0]
		}
		pp.ContainerPort = parts[1]
	case 3:
		pp.IP = parts[0]
		pp.HostPort = parts[1]
		pp.ContainerPort = parts[2]
	default:
		return PublishPort{}, &PortError{Value: raw, Msg: "too many ':'-separated fields"}
	}

	if pp.HostPort != "" && !isPortOrRange(pp.HostPort) {
		return PublishPort{}, &PortError{Value: raw, Msg: "invalid host port"}
	}
	if !isPortOrRange(pp.ContainerPort) {
		return PublishPort{}, &PortError{Value: raw, Msg: "invalid container port"}
	}

	return pp, nil
}

func cutProtocol(s string) (proto, rest string, ok bool) {
	if p := strings.TrimSuffix(s, "/tcp"); p != s {
		return "tcp", p, true
	}
	if p := strings.TrimSuffix(s, "/udp"); p != s {
		return "udp", p, true
	}
	if p := strings.TrimSuffix(s, "/sctp"); p != s {
		return "sctp", p, true
	}
	return "", s, false
}

// isPortOrRange validates "DDDD" or "DDDD-DDDD" and that every port
// number fits in [0, 65535].
func isPortOrRange(s string) bool {
	lo, hi, isRange := strings.Cut(s, "-")
	if !isValidPortNumber(lo) {
		return false
	}
	if isRange && !isValidPortNumber(hi) {
		return false
	}
	return true
}

func isValidPortNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	n, err := strconv.Atoi(s)
	return err == nil && n >= 0 && n <= 65535
}

// IsPortRangeSpec is a byte-by-byte port-range/protocol grammar check
// ("\d+(-\d+)?(/udp|/tcp)?$"), used for ExposeHostPort= values which have
// no host/IP part to split off.
func IsPortRangeSpec(port string) bool {
	if port == "" {
		return false
	}
	i := 0
	n := len(port)

	digits := 0
	for i < n && isDigit(port[i]) {
		digits++
		i++
	}
	if digits == 0 {
		return false
	}
	if i < n && port[i] == '-' {
		i++
		digits = 0
		for i < n && isDigit(port[i]) {
			digits++
			i++
		}
		if digits == 0 {
			return false
		}
	}
	if i == n {
		return true
	}
	if port[i] != '/' {
		return false
	}
	rest := port[i+1:]
	return rest == "tcp" || rest == "udp"
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// FormatPublishPort renders pp back into the "[IP:][HOSTPORT:]CONTAINERPORT[/PROTO]"
// form the container engine's --publish flag expects.
func FormatPublishPort(pp PublishPort) string {
	var b strings.Builder
	if pp.IP != "" {
		if strings.Contains(pp.IP, ":") {
			b.WriteByte('[')
			b.WriteString(pp.IP)
			b.WriteByte(']')
		} else {
			b.WriteString(pp.IP)
		}
		b.WriteByte(':')
	}
	if pp.HostPort != "" {
		b.WriteString(pp.HostPort)
		b.WriteByte(':')
	}
	b.WriteString(pp.ContainerPort)
	if pp.Protocol != "" {
		b.WriteByte('/')
		b.WriteString(pp.Protocol)
	}
	return b.String()
}

package adapter

import (
	"regexp"
	"strings"
)

// hostLinePrefix marks the only grepable lines that describe a host
const hostLinePrefix = "Host:"

var hostLinePattern = regexp.MustCompile(`Host:\s+(\S+)\s+\((.*?)\)\s+Status:\s+(\w+)`)

// ProbeHost is one host line parsed from grepable probe output
type ProbeHost struct {
	IP       string `json:"ip"`
	Hostname string `json:"hostname"`
	Status   string `json:"status"`
}

// Up reports whether the status word means the host answered
func (h ProbeHost) Up() bool {
	return strings.EqualFold(h.Status, "up")
}

// ParseGrepable extracts host lines from nmap -oG output in input order.
// Comment lines, timing noise and partial host lines are skipped.
func ParseGrepable(output string) []ProbeHost {
	var hosts []ProbeHost
	for line := range strings.Lines(output) {
		if host, ok := classifyLine(strings.TrimRight(line, "\r\n")); ok {
			hosts = append(hosts, host)
		}
	}
	return hosts
}

// classifyLine returns the host described by line, or false when the line
// is not a complete host status line
func classifyLine(line string) (ProbeHost, bool) {
	if !strings.HasPrefix(line, hostLinePrefix) {
		return ProbeHost{}, false
	}
	m := hostLinePattern.FindStringSubmatch(line)
	if m == nil {
		return ProbeHost{}, false
	}
	return ProbeHost{IP: m[1], Hostname: m[2], Status: m[3]}, true
}

package adapter

import "time"

// NmapOption is a functional option for configuring NmapProbe
type NmapOption func(*NmapProbe)

// WithBinaryPath sets the nmap executable to run.
// An empty path leaves lookup on $PATH.
func WithBinaryPath(path string) NmapOption {
	return func(n *NmapProbe) {
		n.binaryPath = path
	}
}

// WithTimeout bounds a single probe run
func WithTimeout(d time.Duration) NmapOption {
	return func(n *NmapProbe) {
		if d > 0 {
			n.timeout = d
		}
	}
}

// WithDefaultPorts sets the TCP SYN ports used when a caller asks for a
// TCP ping without naming ports
// Format: "80,443,8080" or "1-1000" or "22,80-443,8080"
func WithDefaultPorts(ports string) NmapOption {
	return func(n *NmapProbe) {
		if validated, err := parsePorts(ports); err == nil {
			n.defaultPorts = validated
		}
	}
}

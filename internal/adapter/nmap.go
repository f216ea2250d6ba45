package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	nmap "github.com/Ullaakut/nmap/v3"
	"github.com/charmbracelet/log"

	"netscan/internal/domain"
)

const (
	// DefaultTCPPorts are probed with TCP SYN when a TCP ping names no ports
	DefaultTCPPorts = "22,80,443,445,3389"

	// DefaultProbeTimeout bounds a single nmap run
	DefaultProbeTimeout = 5 * time.Minute

	defaultBinary = "nmap"
)

// ProbeRequest describes one host-discovery sweep
type ProbeRequest struct {
	Range      domain.TargetRange
	ResolveDNS bool
	TCPPing    bool
	Ports      string
}

// ProbeOutput is the captured result of a finished probe
type ProbeOutput struct {
	Stdout   string
	ExitCode int
	Duration time.Duration
}

// NmapProbe runs ping sweeps with the nmap binary and captures grepable output
type NmapProbe struct {
	binaryPath   string
	timeout      time.Duration
	defaultPorts string
}

// NewNmapProbe creates a probe invoker
func NewNmapProbe(opts ...NmapOption) *NmapProbe {
	probe := &NmapProbe{
		timeout:      DefaultProbeTimeout,
		defaultPorts: DefaultTCPPorts,
	}

	for _, opt := range opts {
		opt(probe)
	}

	return probe
}

// Name returns the probe identifier
func (n *NmapProbe) Name() string {
	return "nmap"
}

// DefaultPorts returns the TCP SYN port list used when none is requested
func (n *NmapProbe) DefaultPorts() string {
	return n.defaultPorts
}

// Available reports whether the nmap binary can be resolved
func (n *NmapProbe) Available(ctx context.Context) bool {
	if n.binaryPath != "" {
		_, err := exec.LookPath(n.binaryPath)
		return err == nil
	}
	_, err := n.newScanner(ctx, nil)
	return err == nil
}

// Args returns the argument vector for req, without the binary name
func (n *NmapProbe) Args(ctx context.Context, req ProbeRequest) ([]string, error) {
	scanner, err := n.newScanner(ctx, n.probeOptions(req))
	if err != nil {
		return nil, err
	}
	return scanner.Args(), nil
}

// Probe runs one sweep and returns its stdout.
// Exit status 0 and 1 are success; 1 means nmap ran but found nothing up.
func (n *NmapProbe) Probe(ctx context.Context, req ProbeRequest) (*ProbeOutput, error) {
	if req.Range == "" {
		return nil, fmt.Errorf("%w: range is empty", domain.ErrInvalidRange)
	}

	args, err := n.Args(ctx, req)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, n.binary(), args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = 5 * time.Second

	log.Debug("nmap: starting probe", "range", req.Range, "args", strings.Join(args, " "))
	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		log.Warn("nmap: probe timed out", "range", req.Range, "timeout", n.timeout)
		return nil, fmt.Errorf("%w after %s scanning %s", domain.ErrProbeTimeout, n.timeout, req.Range)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrProbeLaunch, ctxErr)
	}

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return nil, fmt.Errorf("%w: %w", domain.ErrProbeLaunch, runErr)
		}
		exitCode = exitErr.ExitCode()
	}

	if exitCode != 0 && exitCode != 1 {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = "nmap failed"
		}
		log.Warn("nmap: probe failed", "range", req.Range, "exit_code", exitCode, "stderr", msg)
		return nil, fmt.Errorf("%w: %s", domain.ErrProbeLaunch, msg)
	}

	log.Debug("nmap: probe finished", "range", req.Range, "exit_code", exitCode, "duration", elapsed)
	return &ProbeOutput{
		Stdout:   stdout.String(),
		ExitCode: exitCode,
		Duration: elapsed,
	}, nil
}

// probeOptions maps a request onto nmap flags: -sn -oG - [-n] [-PS<ports>] <range>
func (n *NmapProbe) probeOptions(req ProbeRequest) []nmap.Option {
	opts := []nmap.Option{
		nmap.WithPingScan(),
		nmap.WithCustomArguments("-oG", "-"),
	}

	if !req.ResolveDNS {
		opts = append(opts, nmap.WithDisabledDNSResolution())
	}

	if req.TCPPing {
		opts = append(opts, nmap.WithSYNDiscovery(n.tcpPorts(req.Ports)))
	}

	return append(opts, nmap.WithTargets(req.Range.String()))
}

// newScanner lets the nmap library resolve the binary and assemble flags
func (n *NmapProbe) newScanner(ctx context.Context, opts []nmap.Option) (*nmap.Scanner, error) {
	if n.binaryPath != "" {
		opts = append(opts, nmap.WithBinaryPath(n.binaryPath))
	}
	scanner, err := nmap.NewScanner(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrProbeLaunch, err)
	}
	return scanner, nil
}

func (n *NmapProbe) binary() string {
	if n.binaryPath != "" {
		return n.binaryPath
	}
	return defaultBinary
}

func (n *NmapProbe) tcpPorts(requested string) string {
	if ports := strings.TrimSpace(requested); ports != "" {
		return ports
	}
	return n.defaultPorts
}

// parsePorts validates a port list in nmap format
func parsePorts(portRange string) (string, error) {
	// Supported: "80,443,8080" or "1-1000" or "22,80-443,8080"
	portRange = strings.TrimSpace(portRange)
	if portRange == "" {
		return "", fmt.Errorf("empty port list")
	}
	parts := strings.Split(portRange, ",")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if strings.Contains(part, "-") {
			rangeParts := strings.Split(part, "-")
			if len(rangeParts) != 2 {
				return "", fmt.Errorf("invalid port range: %s", part)
			}
			start, err := strconv.Atoi(strings.TrimSpace(rangeParts[0]))
			if err != nil || start < 1 || start > 65535 {
				return "", fmt.Errorf("invalid port number: %s", rangeParts[0])
			}
			end, err := strconv.Atoi(strings.TrimSpace(rangeParts[1]))
			if err != nil || end < 1 || end > 65535 || end < start {
				return "", fmt.Errorf("invalid port number: %s", rangeParts[1])
			}
		} else {
			port, err := strconv.Atoi(part)
			if err != nil || port < 1 || port > 65535 {
				return "", fmt.Errorf("invalid port number: %s", part)
			}
		}
	}
	return portRange, nil
}

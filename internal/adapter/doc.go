// Package adapter wraps the nmap binary used for host discovery.
//
// NmapProbe builds a ping-sweep command line with the nmap library, runs it
// with a timeout and captures grepable (-oG) output. ParseGrepable turns that
// output into ProbeHost values, skipping every line that is not a complete
// host status line.
//
// # Exit Status
//
// nmap exits 1 when it ran but found nothing to report, so both 0 and 1 are
// success. Any other status, a missing binary or a launch failure is
// reported as domain.ErrProbeLaunch; an expired timeout as
// domain.ErrProbeTimeout.
package adapter

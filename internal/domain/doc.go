// Package domain defines the core types of the NetScan host inventory.
//
// The types here describe what a sweep of an address range produces and
// what the operator attaches to the hosts it finds:
//
// # Scan Results
//
// HostRecord is one host reported by a discovery probe, enriched with the
// operator's alias and notes and the last time the host answered. Records
// are built per scan and never persisted as a whole.
//
// TargetRange is a range string that has passed ValidateRange. Two textual
// shapes are accepted: CIDR (10.10.0.0/24) and start-end
// (10.10.0.10-10.10.0.50). Octet values are not range checked; the probe
// rejects nonsense addresses itself.
//
// # Identity
//
// AliasEntry binds an operator-chosen name and free-form notes to an IP.
// SeenEntry records the most recent time an IP was observed up.
// Preset is a named range offered to the operator as a shortcut.
//
// # Ordering
//
// SortHostRecords orders results with up hosts first, then by the numeric
// value of the four address octets, so 10.0.0.2 precedes 10.0.0.10.
//
// # Design Principles
//
// - No database or process dependencies
// - Sentinel errors for the failure classes callers must tell apart
package domain

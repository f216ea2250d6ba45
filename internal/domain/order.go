package domain

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// ipv4Key splits a dotted quad into its numeric components
func ipv4Key(ip string) ([4]int, bool) {
	var key [4]int
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return key, false
	}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return key, false
		}
		key[i] = n
	}
	return key, true
}

// CompareIP orders dotted quads numerically by octet.
// Addresses that are not four integers sort after numeric ones, by string.
func CompareIP(a, b string) int {
	ka, okA := ipv4Key(a)
	kb, okB := ipv4Key(b)
	switch {
	case okA && okB:
		for i := range ka {
			if c := cmp.Compare(ka[i], kb[i]); c != 0 {
				return c
			}
		}
		return 0
	case okA:
		return -1
	case okB:
		return 1
	}
	return strings.Compare(a, b)
}

// CompareHostRecords puts up hosts before down hosts, then compares addresses
func CompareHostRecords(a, b HostRecord) int {
	if a.Up != b.Up {
		if a.Up {
			return -1
		}
		return 1
	}
	return CompareIP(a.IP, b.IP)
}

// SortHostRecords sorts records in place into result order
func SortHostRecords(records []HostRecord) {
	slices.SortStableFunc(records, CompareHostRecords)
}

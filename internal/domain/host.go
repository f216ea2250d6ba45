package domain

import "time"

// AliasKeyIP is the only alias key type currently stored
const AliasKeyIP = "ip"

// HostRecord is a single host reported by a scan, merged with identity data
type HostRecord struct {
	IP       string     `json:"ip"`
	Up       bool       `json:"up"`
	Hostname string     `json:"hostname"`
	Alias    string     `json:"alias"`
	Notes    string     `json:"notes"`
	LastSeen *time.Time `json:"last_seen"`
}

// AliasEntry is an operator-assigned name for an address
type AliasEntry struct {
	KeyType   string    `json:"key_type"`
	IP        string    `json:"ip"`
	Name      string    `json:"alias_name"`
	Notes     string    `json:"notes"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SeenEntry records when an address last answered a probe
type SeenEntry struct {
	IP       string    `json:"ip"`
	LastSeen time.Time `json:"last_seen"`
}

// Preset is a named scan range offered as a shortcut
type Preset struct {
	ID        int64  `json:"id" yaml:"-"`
	Name      string `json:"name" yaml:"name"`
	Range     string `json:"range" yaml:"range"`
	SortOrder int    `json:"sort_order" yaml:"-"`
}

// CountUp returns how many records are up and down
func CountUp(records []HostRecord) (up, down int) {
	for _, r := range records {
		if r.Up {
			up++
		} else {
			down++
		}
	}
	return up, down
}

package service

import (
	"context"
	"fmt"

	"netscan/internal/adapter"
	"netscan/internal/domain"
	"netscan/internal/repository"
)

// MergeAndSort turns parsed probe hosts into result records.
// Up hosts are marked seen before their identity is read, so LastSeen
// reflects this scan. Any store error aborts the merge.
func MergeAndSort(ctx context.Context, store repository.IdentityStore, parsed []adapter.ProbeHost) ([]domain.HostRecord, error) {
	records := make([]domain.HostRecord, 0, len(parsed))

	for _, host := range parsed {
		rec := domain.HostRecord{
			IP:       host.IP,
			Up:       host.Up(),
			Hostname: host.Hostname,
		}

		if rec.Up {
			if err := store.MarkSeen(ctx, host.IP); err != nil {
				return nil, fmt.Errorf("marking %s seen: %w", host.IP, err)
			}
		}

		alias, err := store.GetAlias(ctx, host.IP)
		if err != nil {
			return nil, fmt.Errorf("loading alias for %s: %w", host.IP, err)
		}
		if alias != nil {
			rec.Alias = alias.Name
			rec.Notes = alias.Notes
		}

		lastSeen, err := store.GetLastSeen(ctx, host.IP)
		if err != nil {
			return nil, fmt.Errorf("loading last seen for %s: %w", host.IP, err)
		}
		rec.LastSeen = lastSeen

		records = append(records, rec)
	}

	domain.SortHostRecords(records)
	return records, nil
}

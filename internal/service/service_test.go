package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"netscan/internal/adapter"
	"netscan/internal/domain"
	"netscan/internal/repository/memory"
)

const threeHostOutput = `# Nmap 7.94 scan initiated Mon Jan  6 10:00:00 2025 as: nmap -sn -oG - -n 10.10.0.0/24
Host: 10.10.0.20 ()	Status: Up
Host: 10.10.0.5 ()	Status: Down
Host: 10.10.0.2 (gw.lan)	Status: Up
# Nmap done at Mon Jan  6 10:00:03 2025 -- 256 IP addresses (2 hosts up) scanned in 3.02 seconds
`

type fakeProber struct {
	stdout string
	err    error
	calls  []adapter.ProbeRequest
}

func (f *fakeProber) Probe(ctx context.Context, req adapter.ProbeRequest) (*adapter.ProbeOutput, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return &adapter.ProbeOutput{Stdout: f.stdout}, nil
}

// failingStore fails every identity operation
type failingStore struct {
	*memory.Store
	err error
}

func (f failingStore) MarkSeen(ctx context.Context, ip string) error {
	return f.err
}

func (f failingStore) GetAlias(ctx context.Context, ip string) (*domain.AliasEntry, error) {
	return nil, f.err
}

func newClockedStore(now time.Time) *memory.Store {
	store := memory.New()
	store.SetClock(func() time.Time { return now })
	return store
}

func TestScanService(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)

	t.Run("merges and orders three hosts", func(t *testing.T) {
		store := newClockedStore(now)
		prober := &fakeProber{stdout: threeHostOutput}
		svc := NewScanService(prober, store, nil, nil)

		result, err := svc.Scan(ctx, ScanRequest{Range: "  10.10.0.0/24 "})
		if err != nil {
			t.Fatalf("Scan failed: %v", err)
		}

		if result.Range != "10.10.0.0/24" {
			t.Errorf("expected trimmed range, got %q", result.Range)
		}
		if len(result.Results) != 3 {
			t.Fatalf("expected 3 records, got %d", len(result.Results))
		}

		wantOrder := []struct {
			ip string
			up bool
		}{
			{"10.10.0.2", true},
			{"10.10.0.20", true},
			{"10.10.0.5", false},
		}
		for i, want := range wantOrder {
			got := result.Results[i]
			if got.IP != want.ip || got.Up != want.up {
				t.Errorf("record %d: expected %s up=%v, got %s up=%v", i, want.ip, want.up, got.IP, got.Up)
			}
		}

		if result.Results[0].Hostname != "gw.lan" {
			t.Errorf("expected hostname gw.lan, got %q", result.Results[0].Hostname)
		}
		if result.Results[1].Hostname != "" {
			t.Errorf("expected empty hostname, got %q", result.Results[1].Hostname)
		}

		if store.SeenCount() != 2 {
			t.Errorf("expected 2 seen entries, got %d", store.SeenCount())
		}
		for _, rec := range result.Results[:2] {
			if rec.LastSeen == nil || !rec.LastSeen.Equal(now) {
				t.Errorf("%s: expected last seen %v, got %v", rec.IP, now, rec.LastSeen)
			}
		}
		if result.Results[2].LastSeen != nil {
			t.Errorf("down host should have no last seen, got %v", result.Results[2].LastSeen)
		}
	})

	t.Run("passes options to the probe", func(t *testing.T) {
		prober := &fakeProber{}
		svc := NewScanService(prober, memory.New(), nil, nil)

		_, err := svc.Scan(ctx, ScanRequest{
			Range:      "10.10.0.10-10.10.0.50",
			TCPPing:    true,
			Ports:      "22,443",
			ReverseDNS: true,
		})
		if err != nil {
			t.Fatalf("Scan failed: %v", err)
		}

		if len(prober.calls) != 1 {
			t.Fatalf("expected 1 probe call, got %d", len(prober.calls))
		}
		want := adapter.ProbeRequest{
			Range:      "10.10.0.10-10.10.0.50",
			ResolveDNS: true,
			TCPPing:    true,
			Ports:      "22,443",
		}
		if prober.calls[0] != want {
			t.Errorf("expected %+v, got %+v", want, prober.calls[0])
		}
	})

	t.Run("empty output yields empty results", func(t *testing.T) {
		svc := NewScanService(&fakeProber{stdout: "# Nmap done\n"}, memory.New(), nil, nil)

		result, err := svc.Scan(ctx, ScanRequest{Range: "10.10.0.0/24"})
		if err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		if result.Results == nil || len(result.Results) != 0 {
			t.Errorf("expected empty non-nil results, got %#v", result.Results)
		}
	})

	t.Run("invalid range never reaches the probe", func(t *testing.T) {
		prober := &fakeProber{}
		svc := NewScanService(prober, memory.New(), nil, nil)

		for _, input := range []string{"", "   ", "10.10.0.0", "example.com"} {
			_, err := svc.Scan(ctx, ScanRequest{Range: input})
			if !errors.Is(err, domain.ErrInvalidRange) {
				t.Errorf("%q: expected ErrInvalidRange, got %v", input, err)
			}
		}
		if len(prober.calls) != 0 {
			t.Errorf("expected no probe calls, got %d", len(prober.calls))
		}
	})

	t.Run("probe errors propagate", func(t *testing.T) {
		for _, sentinel := range []error{domain.ErrProbeLaunch, domain.ErrProbeTimeout} {
			store := memory.New()
			prober := &fakeProber{err: fmt.Errorf("%w: boom", sentinel)}
			svc := NewScanService(prober, store, nil, nil)

			result, err := svc.Scan(ctx, ScanRequest{Range: "10.10.0.0/24"})
			if !errors.Is(err, sentinel) {
				t.Errorf("expected %v, got %v", sentinel, err)
			}
			if result != nil {
				t.Errorf("expected no partial result, got %+v", result)
			}
			if store.SeenCount() != 0 {
				t.Errorf("expected no seen writes, got %d", store.SeenCount())
			}
		}
	})

	t.Run("store errors abort the scan", func(t *testing.T) {
		storeErr := errors.New("disk full")
		store := failingStore{Store: memory.New(), err: storeErr}
		svc := NewScanService(&fakeProber{stdout: threeHostOutput}, store, nil, nil)

		result, err := svc.Scan(ctx, ScanRequest{Range: "10.10.0.0/24"})
		if !errors.Is(err, storeErr) {
			t.Errorf("expected store error, got %v", err)
		}
		if result != nil {
			t.Errorf("expected no partial result, got %+v", result)
		}
	})

	t.Run("publishes scan completed", func(t *testing.T) {
		bus := NewEventBus()
		events := make(chan Event, 1)
		bus.Subscribe(events)

		svc := NewScanService(&fakeProber{stdout: threeHostOutput}, memory.New(), bus, nil)
		if _, err := svc.Scan(ctx, ScanRequest{Range: "10.10.0.0/24"}); err != nil {
			t.Fatalf("Scan failed: %v", err)
		}

		select {
		case ev := <-events:
			if ev.Type != EventScanCompleted {
				t.Errorf("expected %s, got %s", EventScanCompleted, ev.Type)
			}
			payload := ev.Payload.(map[string]any)
			if payload["up"] != 2 || payload["down"] != 1 {
				t.Errorf("unexpected payload %v", payload)
			}
		default:
			t.Error("expected an event")
		}
	})
}

func TestMergeAndSort(t *testing.T) {
	ctx := context.Background()

	t.Run("attaches alias and notes", func(t *testing.T) {
		store := memory.New()
		if err := store.UpsertAlias(ctx, "10.10.0.5", "core-sw", "rack1"); err != nil {
			t.Fatal(err)
		}

		records, err := MergeAndSort(ctx, store, []adapter.ProbeHost{
			{IP: "10.10.0.5", Status: "Down"},
		})
		if err != nil {
			t.Fatalf("MergeAndSort failed: %v", err)
		}
		if records[0].Alias != "core-sw" || records[0].Notes != "rack1" {
			t.Errorf("expected alias core-sw/rack1, got %q/%q", records[0].Alias, records[0].Notes)
		}
		if records[0].LastSeen != nil {
			t.Errorf("down host never seen should have nil last seen")
		}
	})

	t.Run("down host keeps earlier last seen", func(t *testing.T) {
		earlier := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		store := newClockedStore(earlier)
		if err := store.MarkSeen(ctx, "10.10.0.9"); err != nil {
			t.Fatal(err)
		}
		store.SetClock(func() time.Time { return earlier.Add(time.Hour) })

		records, err := MergeAndSort(ctx, store, []adapter.ProbeHost{
			{IP: "10.10.0.9", Status: "Down"},
		})
		if err != nil {
			t.Fatalf("MergeAndSort failed: %v", err)
		}
		if records[0].LastSeen == nil || !records[0].LastSeen.Equal(earlier) {
			t.Errorf("expected last seen %v, got %v", earlier, records[0].LastSeen)
		}
	})

	t.Run("idempotent on partition", func(t *testing.T) {
		store := memory.New()
		parsed := adapter.ParseGrepable(threeHostOutput)

		first, err := MergeAndSort(ctx, store, parsed)
		if err != nil {
			t.Fatal(err)
		}
		second, err := MergeAndSort(ctx, store, parsed)
		if err != nil {
			t.Fatal(err)
		}

		if len(first) != len(second) {
			t.Fatalf("record counts differ: %d vs %d", len(first), len(second))
		}
		for i := range first {
			if first[i].IP != second[i].IP || first[i].Up != second[i].Up {
				t.Errorf("record %d differs: %+v vs %+v", i, first[i], second[i])
			}
		}
		if store.SeenCount() != 2 {
			t.Errorf("expected 2 seen entries, got %d", store.SeenCount())
		}
	})

	t.Run("orders numerically within partition", func(t *testing.T) {
		parsed := []adapter.ProbeHost{
			{IP: "10.10.0.100", Status: "Up"},
			{IP: "10.10.0.3", Status: "Down"},
			{IP: "10.10.0.10", Status: "up"},
			{IP: "10.10.0.2", Status: "UP"},
		}
		records, err := MergeAndSort(ctx, memory.New(), parsed)
		if err != nil {
			t.Fatal(err)
		}

		want := []string{"10.10.0.2", "10.10.0.10", "10.10.0.100", "10.10.0.3"}
		for i, ip := range want {
			if records[i].IP != ip {
				t.Errorf("position %d: expected %s, got %s", i, ip, records[i].IP)
			}
		}
		if records[3].Up {
			t.Error("down host sorted into up partition")
		}
	})
}

func TestAliasService(t *testing.T) {
	ctx := context.Background()

	t.Run("set trims and publishes", func(t *testing.T) {
		store := memory.New()
		bus := NewEventBus()
		events := make(chan Event, 1)
		bus.Subscribe(events)
		svc := NewAliasService(store, bus, nil)

		if err := svc.SetAlias(ctx, " 10.10.0.5 ", " core-sw ", " rack1 "); err != nil {
			t.Fatalf("SetAlias failed: %v", err)
		}

		alias, err := store.GetAlias(ctx, "10.10.0.5")
		if err != nil || alias == nil {
			t.Fatalf("expected alias, got %v, %v", alias, err)
		}
		if alias.Name != "core-sw" || alias.Notes != "rack1" {
			t.Errorf("expected core-sw/rack1, got %q/%q", alias.Name, alias.Notes)
		}

		ev := <-events
		if ev.Type != EventAliasUpdated {
			t.Errorf("expected %s, got %s", EventAliasUpdated, ev.Type)
		}
	})

	t.Run("blank name is a no-op", func(t *testing.T) {
		store := memory.New()
		svc := NewAliasService(store, nil, nil)

		if err := svc.SetAlias(ctx, "10.10.0.5", "  ", "notes"); err != nil {
			t.Fatalf("SetAlias failed: %v", err)
		}
		alias, _ := store.GetAlias(ctx, "10.10.0.5")
		if alias != nil {
			t.Errorf("expected no alias, got %+v", alias)
		}
	})

	t.Run("ip is required", func(t *testing.T) {
		svc := NewAliasService(memory.New(), nil, nil)

		if err := svc.SetAlias(ctx, " ", "x", ""); !errors.Is(err, ErrIPRequired) {
			t.Errorf("SetAlias: expected ErrIPRequired, got %v", err)
		}
		if err := svc.DeleteAlias(ctx, ""); !errors.Is(err, ErrIPRequired) {
			t.Errorf("DeleteAlias: expected ErrIPRequired, got %v", err)
		}
	})

	t.Run("delete removes alias", func(t *testing.T) {
		store := memory.New()
		svc := NewAliasService(store, nil, nil)

		if err := svc.SetAlias(ctx, "10.10.0.5", "core-sw", ""); err != nil {
			t.Fatal(err)
		}
		if err := svc.DeleteAlias(ctx, "10.10.0.5"); err != nil {
			t.Fatalf("DeleteAlias failed: %v", err)
		}
		if err := svc.DeleteAlias(ctx, "10.10.0.5"); err != nil {
			t.Errorf("deleting a missing alias should succeed, got %v", err)
		}
		alias, _ := store.GetAlias(ctx, "10.10.0.5")
		if alias != nil {
			t.Errorf("expected alias removed, got %+v", alias)
		}
	})
}

func TestPresetService(t *testing.T) {
	ctx := context.Background()

	t.Run("save cleans and replaces", func(t *testing.T) {
		store := memory.New()
		svc := NewPresetService(store, nil, adapter.DefaultTCPPorts)

		saved, err := svc.Save(ctx, []domain.Preset{
			{Name: " Office ", Range: " 10.10.0.0/24 "},
			{Name: "", Range: ""},
			{Name: "", Range: "10.20.0.1-10.20.0.9"},
		})
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if len(saved) != 2 {
			t.Fatalf("expected 2 presets, got %d", len(saved))
		}

		listed, err := svc.List(ctx)
		if err != nil {
			t.Fatal(err)
		}
		want := []domain.Preset{
			{Name: "Office", Range: "10.10.0.0/24"},
			{Name: "10.20.0.1-10.20.0.9", Range: "10.20.0.1-10.20.0.9"},
		}
		if len(listed) != len(want) {
			t.Fatalf("expected %d presets, got %d", len(want), len(listed))
		}
		for i := range want {
			if listed[i].Name != want[i].Name || listed[i].Range != want[i].Range {
				t.Errorf("preset %d: expected %+v, got %+v", i, want[i], listed[i])
			}
		}
	})

	t.Run("invalid range rejects whole save", func(t *testing.T) {
		store := memory.New()
		svc := NewPresetService(store, nil, adapter.DefaultTCPPorts)
		if _, err := svc.Save(ctx, []domain.Preset{{Name: "a", Range: "10.0.0.0/8"}}); err != nil {
			t.Fatal(err)
		}

		_, err := svc.Save(ctx, []domain.Preset{
			{Name: "b", Range: "10.1.0.0/16"},
			{Name: "bad", Range: "not-a-range"},
		})
		if !errors.Is(err, domain.ErrInvalidRange) {
			t.Fatalf("expected ErrInvalidRange, got %v", err)
		}

		listed, _ := svc.List(ctx)
		if len(listed) != 1 || listed[0].Name != "a" {
			t.Errorf("expected original presets kept, got %+v", listed)
		}
	})

	t.Run("default ports", func(t *testing.T) {
		svc := NewPresetService(memory.New(), nil, "22,80")
		if svc.DefaultPorts() != "22,80" {
			t.Errorf("expected 22,80, got %s", svc.DefaultPorts())
		}
	})
}

func TestEventBusDropsForSlowSubscriber(t *testing.T) {
	bus := NewEventBus()
	events := make(chan Event, 1)
	bus.Subscribe(events)

	bus.Publish(Event{Type: EventAliasUpdated})
	bus.Publish(Event{Type: EventAliasDeleted})

	if ev := <-events; ev.Type != EventAliasUpdated {
		t.Errorf("expected first event kept, got %s", ev.Type)
	}
	select {
	case ev := <-events:
		t.Errorf("expected second event dropped, got %s", ev.Type)
	default:
	}

	var nilBus *EventBus
	nilBus.Publish(Event{Type: EventScanCompleted})
}

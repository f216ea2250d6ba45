package service

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"netscan/internal/adapter"
	"netscan/internal/domain"
	"netscan/internal/metrics"
	"netscan/internal/repository"
)

// Prober runs one host-discovery sweep
type Prober interface {
	Probe(ctx context.Context, req adapter.ProbeRequest) (*adapter.ProbeOutput, error)
}

// ScanRequest is a caller's scan as submitted, before validation
type ScanRequest struct {
	Range      string
	TCPPing    bool
	Ports      string
	ReverseDNS bool
}

// ScanResult is the ordered outcome of one scan
type ScanResult struct {
	Range   domain.TargetRange  `json:"range"`
	Results []domain.HostRecord `json:"results"`
}

// ScanService runs the validate, probe, parse and merge pipeline
type ScanService struct {
	prober   Prober
	store    repository.IdentityStore
	eventBus *EventBus
	metrics  *metrics.Metrics
}

// NewScanService creates a new scan service. eventBus and m may be nil.
func NewScanService(prober Prober, store repository.IdentityStore, eventBus *EventBus, m *metrics.Metrics) *ScanService {
	return &ScanService{
		prober:   prober,
		store:    store,
		eventBus: eventBus,
		metrics:  m,
	}
}

// Scan validates the range, probes it and returns merged, sorted records.
// Failures return no partial results.
func (s *ScanService) Scan(ctx context.Context, req ScanRequest) (*ScanResult, error) {
	start := time.Now()

	target, err := domain.ValidateRange(req.Range)
	if err != nil {
		s.metrics.ObserveScan(metrics.OutcomeInvalidRange, 0)
		return nil, err
	}

	out, err := s.prober.Probe(ctx, adapter.ProbeRequest{
		Range:      target,
		ResolveDNS: req.ReverseDNS,
		TCPPing:    req.TCPPing,
		Ports:      req.Ports,
	})
	if err != nil {
		s.metrics.ObserveScan(probeOutcome(err), time.Since(start))
		log.Warn("Scan failed", "range", target, "error", err)
		return nil, err
	}

	parsed := adapter.ParseGrepable(out.Stdout)
	records, err := MergeAndSort(ctx, s.store, parsed)
	if err != nil {
		s.metrics.ObserveScan(metrics.OutcomeStoreError, time.Since(start))
		log.Error("Merging scan results failed", "range", target, "error", err)
		return nil, err
	}

	elapsed := time.Since(start)
	up, down := domain.CountUp(records)
	s.metrics.ObserveScan(metrics.OutcomeOK, elapsed)
	s.metrics.ObserveHosts(up, down)
	log.Info("Scan complete", "range", target, "up", up, "down", down, "duration", elapsed.Round(time.Millisecond))

	s.eventBus.Publish(Event{
		Type: EventScanCompleted,
		Payload: map[string]any{
			"range": target.String(),
			"up":    up,
			"down":  down,
		},
	})

	return &ScanResult{Range: target, Results: records}, nil
}

func probeOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrProbeTimeout):
		return metrics.OutcomeProbeTimeout
	case errors.Is(err, domain.ErrInvalidRange):
		return metrics.OutcomeInvalidRange
	default:
		return metrics.OutcomeProbeFailed
	}
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"netscan/internal/domain"
	"netscan/internal/repository"
)

// PresetService manages the saved list of scan ranges
type PresetService struct {
	store        repository.PresetStore
	eventBus     *EventBus
	defaultPorts string
}

// NewPresetService creates a new preset service
func NewPresetService(store repository.PresetStore, eventBus *EventBus, defaultPorts string) *PresetService {
	return &PresetService{
		store:        store,
		eventBus:     eventBus,
		defaultPorts: defaultPorts,
	}
}

// List returns presets in display order
func (s *PresetService) List(ctx context.Context) ([]domain.Preset, error) {
	return s.store.ListPresets(ctx)
}

// DefaultPorts returns the TCP ports probed when a scan names none
func (s *PresetService) DefaultPorts() string {
	return s.defaultPorts
}

// Save replaces the whole preset list. Rows with neither name nor range are
// dropped; a blank name takes the range. One invalid range rejects the save.
func (s *PresetService) Save(ctx context.Context, presets []domain.Preset) ([]domain.Preset, error) {
	cleaned, err := CleanPresets(presets)
	if err != nil {
		return nil, err
	}

	if err := s.store.ReplacePresets(ctx, cleaned); err != nil {
		return nil, err
	}

	log.Info("Presets saved", "count", len(cleaned))
	s.eventBus.Publish(Event{
		Type:    EventPresetsSaved,
		Payload: map[string]int{"count": len(cleaned)},
	})
	return cleaned, nil
}

// CleanPresets applies the save rules without persisting anything
func CleanPresets(presets []domain.Preset) ([]domain.Preset, error) {
	cleaned := make([]domain.Preset, 0, len(presets))
	for i, p := range presets {
		name := strings.TrimSpace(p.Name)
		raw := strings.TrimSpace(p.Range)
		if name == "" && raw == "" {
			continue
		}

		target, err := domain.ValidateRange(raw)
		if err != nil {
			return nil, fmt.Errorf("preset %d: %w", i+1, err)
		}
		if name == "" {
			name = target.String()
		}

		cleaned = append(cleaned, domain.Preset{
			Name:      name,
			Range:     target.String(),
			SortOrder: len(cleaned),
		})
	}
	return cleaned, nil
}

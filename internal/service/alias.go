package service

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/log"

	"netscan/internal/metrics"
	"netscan/internal/repository"
)

// ErrIPRequired is returned by alias operations given a blank address
var ErrIPRequired = errors.New("ip is required")

// AliasService manages operator-assigned host names
type AliasService struct {
	store    repository.IdentityStore
	eventBus *EventBus
	metrics  *metrics.Metrics
}

// NewAliasService creates a new alias service
func NewAliasService(store repository.IdentityStore, eventBus *EventBus, m *metrics.Metrics) *AliasService {
	return &AliasService{
		store:    store,
		eventBus: eventBus,
		metrics:  m,
	}
}

// SetAlias names ip. A blank name leaves any existing alias untouched.
func (s *AliasService) SetAlias(ctx context.Context, ip, name, notes string) error {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return ErrIPRequired
	}

	name = strings.TrimSpace(name)
	notes = strings.TrimSpace(notes)
	if err := s.store.UpsertAlias(ctx, ip, name, notes); err != nil {
		return err
	}
	if name == "" {
		return nil
	}

	s.metrics.ObserveAliasWrite("set")
	log.Info("Alias set", "ip", ip, "alias", name)
	s.eventBus.Publish(Event{
		Type:    EventAliasUpdated,
		Payload: map[string]string{"ip": ip, "alias_name": name, "notes": notes},
	})
	return nil
}

// DeleteAlias removes the alias for ip, if any
func (s *AliasService) DeleteAlias(ctx context.Context, ip string) error {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return ErrIPRequired
	}

	if err := s.store.DeleteAlias(ctx, ip); err != nil {
		return err
	}

	s.metrics.ObserveAliasWrite("delete")
	log.Info("Alias deleted", "ip", ip)
	s.eventBus.Publish(Event{
		Type:    EventAliasDeleted,
		Payload: map[string]string{"ip": ip},
	})
	return nil
}

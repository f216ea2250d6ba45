package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"netscan/internal/domain"
	"netscan/internal/service"
)

// ErrScanRateLimited is returned when scans arrive faster than the configured rate
var ErrScanRateLimited = errors.New("too many scans, try again shortly")

// Handler serves scan, alias and preset requests
type Handler struct {
	scans   *service.ScanService
	aliases *service.AliasService
	presets *service.PresetService

	scanLimiter *rate.Limiter
}

// New creates a handler over the given services
func New(scans *service.ScanService, aliases *service.AliasService, presets *service.PresetService) *Handler {
	return &Handler{
		scans:   scans,
		aliases: aliases,
		presets: presets,
	}
}

// SetScanRate allows perMinute scans per minute, with bursts of the same
// size. Zero or less removes the limit.
func (h *Handler) SetScanRate(perMinute int) {
	if perMinute <= 0 {
		h.scanLimiter = nil
		return
	}
	h.scanLimiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
}

// okResponse acknowledges a write with no body
type okResponse struct {
	OK bool `json:"ok"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// ScanResponse is the body of a successful scan
type ScanResponse struct {
	OK      bool                `json:"ok"`
	Range   string              `json:"range"`
	Results []domain.HostRecord `json:"results"`
}

// PresetsResponse lists presets and the default TCP ping ports
type PresetsResponse struct {
	OK           bool            `json:"ok"`
	Presets      []domain.Preset `json:"presets"`
	DefaultPorts string          `json:"default_ports"`
}

// Scan runs a host-discovery scan.
// Form fields: target_range, tcp_ping, ports, reverse_dns.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	if h.scanLimiter != nil && !h.scanLimiter.Allow() {
		log.Warn("Scan rejected by rate limit", "remote", r.RemoteAddr)
		h.writeError(w, ErrScanRateLimited)
		return
	}

	req := service.ScanRequest{
		Range:      r.FormValue("target_range"),
		TCPPing:    checked(r, "tcp_ping"),
		Ports:      r.FormValue("ports"),
		ReverseDNS: checked(r, "reverse_dns"),
	}

	result, err := h.scans.Scan(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, ScanResponse{
		OK:      true,
		Range:   result.Range.String(),
		Results: result.Results,
	})
}

// SetAlias names a host. Form fields: ip, alias_name, notes.
func (h *Handler) SetAlias(w http.ResponseWriter, r *http.Request) {
	err := h.aliases.SetAlias(r.Context(), r.FormValue("ip"), r.FormValue("alias_name"), r.FormValue("notes"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, okResponse{OK: true})
}

// DeleteAlias removes a host name. Form field: ip.
func (h *Handler) DeleteAlias(w http.ResponseWriter, r *http.Request) {
	if err := h.aliases.DeleteAlias(r.Context(), r.FormValue("ip")); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, okResponse{OK: true})
}

// ListPresets returns saved presets in display order
func (h *Handler) ListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := h.presets.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, PresetsResponse{
		OK:           true,
		Presets:      presets,
		DefaultPorts: h.presets.DefaultPorts(),
	})
}

// SavePresets replaces the preset list.
// Form field payload holds a JSON array of {name, range}.
func (h *Handler) SavePresets(w http.ResponseWriter, r *http.Request) {
	var presets []domain.Preset
	payload := strings.TrimSpace(r.FormValue("payload"))
	if payload == "" {
		payload = "[]"
	}
	if err := json.Unmarshal([]byte(payload), &presets); err != nil {
		h.writeError(w, fmt.Errorf("invalid payload: %w", err))
		return
	}

	saved, err := h.presets.Save(r.Context(), presets)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, PresetsResponse{
		OK:           true,
		Presets:      saved,
		DefaultPorts: h.presets.DefaultPorts(),
	})
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"status": "ok"})
}

// checked reports whether a checkbox field was submitted with any value
func checked(r *http.Request, field string) bool {
	return r.FormValue(field) != ""
}

func (h *Handler) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error("Failed to encode JSON", "error", err)
	}
}

// writeError reports a failure in-band; the status stays 200
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	h.writeJSON(w, ErrorResponse{OK: false, Error: err.Error()})
}

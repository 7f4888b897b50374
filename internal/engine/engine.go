// Package engine executes building control actions: it enforces role
// policies, validates wire commands, applies state transitions, and records
// the audit trail. All writes to a zone happen inside one transaction so
// state, history, and audit never diverge.
package engine

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"buildline/internal/config"
	"buildline/internal/descriptor"
	"buildline/internal/domain"
	"buildline/internal/events"
	"buildline/internal/repo"
	"buildline/internal/rules"
)

type Engine struct {
	DB       *sql.DB
	Repo     repo.Repo
	Events   events.Writer
	Registry *descriptor.Registry
	Rules    *rules.Validator
	Config   *config.Config
	Now      func() time.Time
}

func New(db *sql.DB, reg *descriptor.Registry, cfg *config.Config) Engine {
	return Engine{
		DB:       db,
		Repo:     repo.Repo{DB: db},
		Events:   events.Writer{DB: db, Registry: reg},
		Registry: reg,
		Rules:    rules.New(),
		Config:   cfg,
		Now:      time.Now,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e Engine) nowRFC3339() string {
	return e.now().UTC().Format(time.RFC3339)
}

// ZoneState is a decoded zone snapshot.
type ZoneState struct {
	ZoneID    string         `json:"zone_id"`
	Name      string         `json:"name,omitempty"`
	State     map[string]any `json:"state"`
	Timestamp string         `json:"timestamp" format:"date-time"`
}

// InitBuilding seeds the zones from config on first startup. Already
// provisioned zones are left untouched.
func (e Engine) InitBuilding(ctx context.Context) error {
	if e.Config == nil {
		return nil
	}
	n, err := e.Repo.CountZones(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	now := e.nowRFC3339()
	for _, seed := range e.Config.Building.Zones {
		state := map[string]any{
			"temperature_setpoint": seed.TemperatureSetpoint,
			"current_temperature":  seed.CurrentTemperature,
			"hvac_mode":            seed.HVACMode,
			"occupancy_mode":       seed.OccupancyMode,
			"power_usage":          seed.PowerUsageKW,
			"ventilation_rate":     0,
			"lighting_level":       0,
			"economizer_enabled":   false,
		}
		data, err := json.Marshal(state)
		if err != nil {
			return err
		}
		z := domain.Zone{ID: seed.ID, Name: seed.Name, StateJSON: string(data), UpdatedAt: now}
		if err := e.Repo.InsertZone(ctx, z); err != nil {
			return err
		}
	}
	return nil
}

// InitializeZone provisions a single zone with the given state, or a
// sensible default state when none is supplied. Re-initializing an existing
// zone fails with the driver's constraint error.
func (e Engine) InitializeZone(ctx context.Context, zoneID, name string, state map[string]any) (ZoneState, error) {
	if state == nil {
		state = map[string]any{
			"temperature_setpoint": 72.0,
			"current_temperature":  72.0,
			"hvac_mode":            "auto",
			"occupancy_mode":       "occupied",
			"power_usage":          0,
			"ventilation_rate":     0,
			"lighting_level":       0,
			"economizer_enabled":   false,
		}
	}
	data, err := json.Marshal(state)
	if err != nil {
		return ZoneState{}, err
	}
	now := e.nowRFC3339()
	z := domain.Zone{ID: zoneID, Name: name, StateJSON: string(data), UpdatedAt: now}
	if err := e.Repo.InsertZone(ctx, z); err != nil {
		return ZoneState{}, err
	}
	return decodeZone(z.ID, z.Name, z.StateJSON, z.UpdatedAt)
}

// GetZoneState returns the decoded state of one zone.
func (e Engine) GetZoneState(ctx context.Context, zoneID string) (ZoneState, error) {
	z, err := e.Repo.GetZone(ctx, zoneID)
	if err != nil {
		return ZoneState{}, err
	}
	return decodeZone(z.ID, z.Name, z.StateJSON, z.UpdatedAt)
}

// AllZoneStates returns the decoded state of every zone, ordered by ID.
func (e Engine) AllZoneStates(ctx context.Context) ([]ZoneState, error) {
	zones, err := e.Repo.ListZones(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ZoneState, 0, len(zones))
	for _, z := range zones {
		zs, err := decodeZone(z.ID, z.Name, z.StateJSON, z.UpdatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, zs)
	}
	return out, nil
}

// Statistics summarizes stored state for the building status endpoint.
type Statistics struct {
	TotalZones        int      `json:"total_zones"`
	TotalStateChanges int      `json:"total_state_changes"`
	TotalAuditEntries int      `json:"total_audit_entries"`
	Zones             []string `json:"zones"`
}

func (e Engine) GetStatistics(ctx context.Context) (Statistics, error) {
	var stats Statistics
	zones, err := e.Repo.ListZones(ctx)
	if err != nil {
		return stats, err
	}
	stats.TotalZones = len(zones)
	for _, z := range zones {
		stats.Zones = append(stats.Zones, z.ID)
	}
	if err := e.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM zone_history`).Scan(&stats.TotalStateChanges); err != nil {
		return stats, err
	}
	if err := e.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_entries`).Scan(&stats.TotalAuditEntries); err != nil {
		return stats, err
	}
	return stats, nil
}

func decodeZone(id, name, stateJSON, updatedAt string) (ZoneState, error) {
	state := map[string]any{}
	if stateJSON != "" {
		if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
			return ZoneState{}, err
		}
	}
	return ZoneState{ZoneID: id, Name: name, State: state, Timestamp: updatedAt}, nil
}

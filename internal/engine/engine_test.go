package engine_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"buildline/internal/action"
	"buildline/internal/catalog"
	"buildline/internal/config"
	"buildline/internal/db"
	"buildline/internal/descriptor"
	"buildline/internal/domain"
	"buildline/internal/engine"
	"buildline/internal/migrate"
	"buildline/internal/repo"
	"buildline/internal/rules"
)

func newTestEnv(t *testing.T) engine.Engine {
	t.Helper()
	workspace := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	reg := descriptor.NewRegistry()
	catalog.Register(reg)
	e := engine.New(conn, reg, config.Default("demo-building"))
	e.Now = func() time.Time { return time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC) }
	if err := e.InitBuilding(context.Background()); err != nil {
		t.Fatalf("init building: %v", err)
	}
	return e
}

func TestInitBuildingSeedsZonesOnce(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	zones, err := e.AllZoneStates(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(zones) != 5 {
		t.Fatalf("expected 5 seeded zones, got %d", len(zones))
	}
	if zones[0].ZoneID != "Z001" || zones[4].ZoneID != "Z005" {
		t.Fatalf("zones not ordered by id: %v %v", zones[0].ZoneID, zones[4].ZoneID)
	}

	// A second init must not duplicate or reset anything.
	if err := e.InitBuilding(ctx); err != nil {
		t.Fatal(err)
	}
	zones, err = e.AllZoneStates(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(zones) != 5 {
		t.Fatalf("reinit changed zone count to %d", len(zones))
	}
}

func TestExecuteActionSetTemperature(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	res, err := e.ExecuteAction(ctx, engine.ExecuteRequest{
		ActionType: rules.CmdSetTemperature,
		TargetZone: "Z001",
		Parameters: map[string]any{"setpoint": 70.0, "mode": "cool"},
		ActorID:    "alice",
		Role:       "facility_manager",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != engine.StatusCompleted {
		t.Fatalf("status = %s, errors = %v", res.Status, res.Errors)
	}

	zs, err := e.GetZoneState(ctx, "Z001")
	if err != nil {
		t.Fatal(err)
	}
	if zs.State["temperature_setpoint"] != 70.0 {
		t.Fatalf("setpoint not applied: %v", zs.State["temperature_setpoint"])
	}
	if zs.State["hvac_mode"] != "cool" {
		t.Fatalf("hvac_mode not applied: %v", zs.State["hvac_mode"])
	}
	if zs.State["last_action_id"] != res.ActionID {
		t.Fatalf("last_action_id = %v, want %s", zs.State["last_action_id"], res.ActionID)
	}

	changes, err := e.Repo.ListStateChanges(ctx, repo.HistoryFilters{ZoneID: "Z001"})
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) != 1 || changes[0].ActionID != res.ActionID {
		t.Fatalf("unexpected history: %+v", changes)
	}

	entries, err := e.Repo.ListAuditEntries(ctx, repo.AuditFilters{ActionID: res.ActionID})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Status != engine.StatusCompleted {
		t.Fatalf("unexpected audit entries: %+v", entries)
	}
	if entries[0].ActorID != "alice" || entries[0].Role != "facility_manager" {
		t.Fatalf("actor not recorded: %+v", entries[0])
	}

	a, err := e.GetAction(ctx, res.ActionID)
	if err != nil {
		t.Fatal(err)
	}
	if a.Status != engine.StatusCompleted {
		t.Fatalf("action status = %s", a.Status)
	}
}

func TestExecuteActionValidationFailed(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	res, err := e.ExecuteAction(ctx, engine.ExecuteRequest{
		ActionType: rules.CmdSetTemperature,
		TargetZone: "Z001",
		Parameters: map[string]any{"setpoint": 200.0},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != engine.StatusValidationFailed {
		t.Fatalf("status = %s", res.Status)
	}
	if len(res.Errors) == 0 {
		t.Fatal("expected validation errors")
	}

	// Nothing may be persisted for a rejected command.
	zs, err := e.GetZoneState(ctx, "Z001")
	if err != nil {
		t.Fatal(err)
	}
	if zs.State["temperature_setpoint"] != 72.0 {
		t.Fatalf("state changed despite rejection: %v", zs.State["temperature_setpoint"])
	}
	if _, err := e.GetAction(ctx, res.ActionID); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected no action row, got %v", err)
	}
}

func TestExecuteActionUnknownZone(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.ExecuteAction(context.Background(), engine.ExecuteRequest{
		ActionType: rules.CmdSetTemperature,
		TargetZone: "Z999",
		Parameters: map[string]any{"setpoint": 70.0},
	})
	if !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCancelAction(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	id := uuid.NewString()
	now := e.Now().UTC().Format(time.RFC3339)
	if err := e.Repo.InsertActiveAction(ctx, domain.ActiveAction{
		ID:         id,
		ActionType: rules.CmdSetLightingLevel,
		Status:     engine.StatusRunning,
		TargetZone: "Z001",
		ParamsJSON: "{}",
		ResultJSON: "{}",
		CreatedAt:  now,
		UpdatedAt:  now,
	}); err != nil {
		t.Fatal(err)
	}

	ok, err := e.CancelAction(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected cancel to succeed")
	}
	a, err := e.GetAction(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if a.Status != engine.StatusCanceled {
		t.Fatalf("status = %s", a.Status)
	}

	// Canceling again, or canceling an unknown action, reports false.
	if ok, err := e.CancelAction(ctx, id); err != nil || ok {
		t.Fatalf("second cancel: ok=%v err=%v", ok, err)
	}
	if ok, err := e.CancelAction(ctx, "no-such-action"); err != nil || ok {
		t.Fatalf("unknown cancel: ok=%v err=%v", ok, err)
	}
}

func TestInitializeZoneDefaults(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	zs, err := e.InitializeZone(ctx, "Z010", "Annex", nil)
	if err != nil {
		t.Fatal(err)
	}
	if zs.ZoneID != "Z010" || zs.Name != "Annex" {
		t.Fatalf("unexpected zone: %+v", zs)
	}
	if zs.State["temperature_setpoint"] != 72.0 || zs.State["occupancy_mode"] != "occupied" {
		t.Fatalf("default state not applied: %v", zs.State)
	}

	// Re-initializing an existing zone hits the primary key.
	if _, err := e.InitializeZone(ctx, "Z010", "Annex", nil); err == nil {
		t.Fatal("expected constraint error")
	}
}

func TestAdjustSetpointCompleted(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	in, errs := action.ValidateAdjustSetpoint(map[string]any{
		"zone_id":      "Z001",
		"new_setpoint": 70.0,
		"reason":       "occupant request",
	})
	if len(errs) != 0 {
		t.Fatalf("unexpected validation errors: %v", errs)
	}

	outcome, err := e.AdjustSetpoint(ctx, in, "alice", "facility_manager")
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Status != engine.StatusCompleted {
		t.Fatalf("status = %s", outcome.Status)
	}
	if len(outcome.Commands) != 1 {
		t.Fatalf("expected one command, got %d", len(outcome.Commands))
	}
	want := "Z001 setpoint changed to 70°F (Priority: Medium)"
	if outcome.Summary != want {
		t.Fatalf("summary = %q, want %q", outcome.Summary, want)
	}

	entries, err := e.Repo.ListAuditEntries(ctx, repo.AuditFilters{ActionID: outcome.ActionID})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Summary != want {
		t.Fatalf("unexpected audit entries: %+v", entries)
	}

	zs, err := e.GetZoneState(ctx, "Z001")
	if err != nil {
		t.Fatal(err)
	}
	if zs.State["temperature_setpoint"] != 70.0 {
		t.Fatalf("setpoint not applied: %v", zs.State["temperature_setpoint"])
	}
}

func TestAdjustSetpointDeniedForUnknownRole(t *testing.T) {
	e := newTestEnv(t)
	in := &action.AdjustSetpointInput{ZoneID: "Z001", NewSetpoint: 70.0, Priority: "medium", MaxChange: 5, Reason: "test"}
	_, err := e.AdjustSetpoint(context.Background(), in, "bob", "janitor")
	var denied engine.DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected DeniedError, got %v", err)
	}
	if denied.Role != "janitor" || denied.Reason != "unknown role" {
		t.Fatalf("unexpected denial: %+v", denied)
	}
}

func TestLoadShedCompleted(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	in, errs := action.ValidateLoadShed(map[string]any{
		"zone_ids":         []any{"Z001", "Z002"},
		"shed_level":       2,
		"duration_minutes": 60,
		"reason":           "peak demand event",
	})
	if len(errs) != 0 {
		t.Fatalf("unexpected validation errors: %v", errs)
	}

	outcome, err := e.LoadShed(ctx, in, "carol", "energy_manager")
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Status != engine.StatusCompleted {
		t.Fatalf("status = %s", outcome.Status)
	}
	if len(outcome.Commands) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(outcome.Commands))
	}

	// Level 2 sheds 35%, leaving lighting at 65%.
	if lvl := outcome.Details["lighting_level"].(float64); math.Abs(lvl-65.0) > 1e-9 {
		t.Fatalf("lighting_level = %v", lvl)
	}
	// 2 zones at 10 kW average, 35% reduction.
	if kw := outcome.Details["estimated_savings_kw"].(float64); math.Abs(kw-7.0) > 1e-9 {
		t.Fatalf("estimated_savings_kw = %v", kw)
	}

	for _, zoneID := range []string{"Z001", "Z002"} {
		zs, err := e.GetZoneState(ctx, zoneID)
		if err != nil {
			t.Fatal(err)
		}
		if lvl := zs.State["lighting_level"].(float64); math.Abs(lvl-65.0) > 1e-9 {
			t.Fatalf("%s lighting_level = %v", zoneID, lvl)
		}
	}

	want := "Load shed level Level 2 (35% reduction) for 60 minutes"
	if outcome.Summary != want {
		t.Fatalf("summary = %q, want %q", outcome.Summary, want)
	}
}

func TestLoadShedDeniedForContractor(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	in := &action.LoadShedInput{
		ZoneIDs:         []string{"Z001"},
		ShedLevel:       2,
		DurationMinutes: 30,
		MinComfortTemp:  68,
		MaxComfortTemp:  78,
		Reason:          "test",
	}
	_, err := e.LoadShed(ctx, in, "dave", "contractor")
	var denied engine.DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected DeniedError, got %v", err)
	}
	if denied.Reason != "Load shedding requires operational authority" {
		t.Fatalf("unexpected reason: %q", denied.Reason)
	}

	// The attempt must show up in the audit trail as denied.
	entries, lerr := e.Repo.ListAuditEntries(ctx, repo.AuditFilters{Status: "denied"})
	if lerr != nil {
		t.Fatal(lerr)
	}
	if len(entries) != 1 || entries[0].ActionType != action.TypeLoadShed {
		t.Fatalf("unexpected denied entries: %+v", entries)
	}
	var details map[string]any
	if err := json.Unmarshal([]byte(entries[0].DetailsJSON), &details); err != nil {
		t.Fatal(err)
	}
	if details["denial"] == "" {
		t.Fatalf("denial detail missing: %v", details)
	}
}

func TestPreCoolCompleted(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	in, errs := action.ValidatePreCooling(map[string]any{
		"zone_ids":        []any{"Z001"},
		"target_temp":     68.0,
		"start_time":      "05:00",
		"occupancy_start": "08:00",
		"reason":          "peak demand reduction",
	})
	if len(errs) != 0 {
		t.Fatalf("unexpected validation errors: %v", errs)
	}

	outcome, err := e.PreCool(ctx, in, "carol", "energy_manager")
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Status != engine.StatusCompleted {
		t.Fatalf("status = %s", outcome.Status)
	}
	if w := outcome.Details["window_minutes"].(int); w != 180 {
		t.Fatalf("window_minutes = %v", w)
	}
	// Z001 starts at 72°F: 4°F delta over 3 hours at $0.12/kWh and 3 kWh
	// per zone-degree-hour is $4.32.
	if cost := outcome.Details["estimated_cost"].(float64); math.Abs(cost-4.32) > 1e-9 {
		t.Fatalf("estimated_cost = %v", cost)
	}
	want := "1 zones pre-cooled to 68°F (Cost: $4.32)"
	if outcome.Summary != want {
		t.Fatalf("summary = %q, want %q", outcome.Summary, want)
	}

	zs, err := e.GetZoneState(ctx, "Z001")
	if err != nil {
		t.Fatal(err)
	}
	if zs.State["temperature_setpoint"] != 68.0 || zs.State["hvac_mode"] != "cool" {
		t.Fatalf("zone not driven to target: %v", zs.State)
	}
}

func TestPreCoolDeniedForOperator(t *testing.T) {
	e := newTestEnv(t)
	in := &action.PreCoolingInput{
		ZoneIDs:        []string{"Z001"},
		TargetTemp:     68.0,
		StartTime:      "05:00",
		OccupancyStart: "08:00",
		MaxRateDelta:   5,
		Priority:       "medium",
		Reason:         "test",
	}
	_, err := e.PreCool(context.Background(), in, "erin", "operator")
	var denied engine.DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected DeniedError, got %v", err)
	}
	if denied.Reason != "Pre-cooling requires optimization expertise" {
		t.Fatalf("unexpected reason: %q", denied.Reason)
	}
}

func TestCheckPolicyPassesWireCommands(t *testing.T) {
	e := newTestEnv(t)
	// Wire commands have no descriptor, so any role may run them.
	if err := e.CheckPolicy(rules.CmdSetTemperature, "contractor"); err != nil {
		t.Fatalf("unexpected denial: %v", err)
	}
}

func TestGetStatistics(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	if _, err := e.ExecuteAction(ctx, engine.ExecuteRequest{
		ActionType: rules.CmdSetOccupancyMode,
		TargetZone: "Z002",
		Parameters: map[string]any{"mode": "standby"},
	}); err != nil {
		t.Fatal(err)
	}

	stats, err := e.GetStatistics(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalZones != 5 {
		t.Fatalf("TotalZones = %d", stats.TotalZones)
	}
	if stats.TotalStateChanges != 1 || stats.TotalAuditEntries != 1 {
		t.Fatalf("unexpected counters: %+v", stats)
	}
}

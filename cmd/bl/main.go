package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"buildline/internal/action"
	"buildline/internal/catalog"
	"buildline/internal/config"
	"buildline/internal/db"
	"buildline/internal/descriptor"
	"buildline/internal/engine"
	"buildline/internal/migrate"
	"buildline/internal/repo"
	"buildline/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "bl",
	Short: "Buildline CLI",
	Long: `Buildline is a governed control surface for building automation.
Core concepts:
- Zones: the building's controllable spaces; each carries HVAC, lighting,
  and occupancy state backed by SQLite in the .buildline workspace.
- Actions: governed operations (adjust-setpoint, load-shed, pre-cooling)
  described by self-describing descriptors: UI form fields, knowledge-graph
  nodes, audit templates, SHACL constraint strings, and ODRL role policies.
- Commands: the low-level wire vocabulary actions emit toward equipment
  (setTemperature, setLightingLevel, ...), validated against a declarative
  parameter table.
- Audit trail: every execution, denial, and failure is recorded with a
  descriptor-rendered summary; view with 'bl audit tail'.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("BUILDLINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("actor-id", "local-user", "actor identifier")
	rootCmd.PersistentFlags().String("role", "facility_manager", "governance role for policy checks")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("actor-id", rootCmd.PersistentFlags().Lookup("actor-id"))
	_ = viper.BindPFlag("role", rootCmd.PersistentFlags().Lookup("role"))
}

func registerCommands() {
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(zoneCmd())
	rootCmd.AddCommand(actionCmd())
	rootCmd.AddCommand(auditCmd())
	rootCmd.AddCommand(descriptorCmd())
	rootCmd.AddCommand(serveCmd())
}

func initCmd() *cobra.Command {
	var buildingID string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a workspace with default config and demo zones",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			path := config.Path(workspace)
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config %s already exists", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault(buildingID)), 0o644); err != nil {
				return err
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				if err := e.InitBuilding(ctx); err != nil {
					return err
				}
				fmt.Printf("Initialized workspace: %s (db %s)\n", path, db.Path(workspace))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&buildingID, "building-id", "demo-building", "building identifier")
	return cmd
}

func zoneCmd() *cobra.Command {
	zone := &cobra.Command{
		Use:   "zone",
		Short: "Inspect and provision zones",
	}
	zone.AddCommand(zoneListCmd())
	zone.AddCommand(zoneShowCmd())
	zone.AddCommand(zoneInitCmd())
	zone.AddCommand(zoneSeedCmd())
	return zone
}

func zoneListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List zones",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				states, err := e.AllZoneStates(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(states)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Setpoint", "Current", "HVAC", "Occupancy", "Lighting"})
				for _, zs := range states {
					tw.AppendRow(table.Row{
						zs.ZoneID,
						zs.Name,
						zs.State["temperature_setpoint"],
						zs.State["current_temperature"],
						zs.State["hvac_mode"],
						zs.State["occupancy_mode"],
						zs.State["lighting_level"],
					})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func zoneShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <zone_id>",
		Short: "Show one zone's state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				zs, err := e.GetZoneState(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(zs)
			})
		},
	}
	return cmd
}

func zoneInitCmd() *cobra.Command {
	var name, stateJSON string
	cmd := &cobra.Command{
		Use:   "init <zone_id>",
		Short: "Provision a zone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var state map[string]any
			if stateJSON != "" {
				if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
					return fmt.Errorf("invalid --state-json: %w", err)
				}
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				zs, err := e.InitializeZone(ctx, args[0], name, state)
				if err != nil {
					return err
				}
				return printJSONOrTable(zs)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "zone display name")
	cmd.Flags().StringVar(&stateJSON, "state-json", "", "initial state JSON (defaults applied when omitted)")
	return cmd
}

func zoneSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed zones from buildline.yml (no-op when zones exist)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				if err := e.InitBuilding(ctx); err != nil {
					return err
				}
				n, err := e.Repo.CountZones(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Zones provisioned: %d\n", n)
				return nil
			})
		},
	}
	return cmd
}

func actionCmd() *cobra.Command {
	act := &cobra.Command{
		Use:   "action",
		Short: "Inspect, validate, and execute actions",
	}
	act.AddCommand(actionListCmd())
	act.AddCommand(actionDescribeCmd())
	act.AddCommand(actionSchemaCmd())
	act.AddCommand(actionValidateCmd())
	act.AddCommand(actionExecuteCmd())
	return act
}

func actionListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List governed actions and wire commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				if viper.GetBool("json") {
					return printJSON(map[string]any{
						"actions":  action.Types,
						"commands": e.Rules.Commands(),
					})
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Kind", "Name"})
				for _, t := range action.Types {
					name := t
					if d := e.Registry.Get(t); d != nil {
						name = d.ActionName
					}
					tw.AppendRow(table.Row{t, "action", name})
				}
				for _, c := range e.Rules.Commands() {
					tw.AppendRow(table.Row{c, "command", ""})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func actionDescribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe <action_id>",
		Short: "Show an action's full descriptor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				d := e.Registry.Get(args[0])
				if d == nil {
					return fmt.Errorf("unknown action: %s", args[0])
				}
				return printJSONOrTable(d)
			})
		},
	}
	return cmd
}

func actionSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema <action_id>",
		Short: "Show an action's input JSON Schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema := action.InputSchema(args[0])
			if schema == nil {
				return fmt.Errorf("no input schema for action: %s", args[0])
			}
			return printJSONOrTable(schema)
		},
	}
	return cmd
}

func actionValidateCmd() *cobra.Command {
	var actionType, paramsJSON string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate parameters without executing",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(paramsJSON)
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				var out map[string]any
				if isGoverned(actionType) {
					errs := action.ValidateParams(actionType, params)
					out = map[string]any{"is_valid": len(errs) == 0, "errors": errs}
				} else {
					res := e.Rules.Validate(actionType, params)
					out = map[string]any{"is_valid": res.Valid, "errors": res.Errors, "warnings": res.Warnings}
				}
				return printJSONOrTable(out)
			})
		},
	}
	cmd.Flags().StringVar(&actionType, "type", "", "action or command type")
	cmd.Flags().StringVar(&paramsJSON, "params-json", "{}", "parameters JSON")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func actionExecuteCmd() *cobra.Command {
	var actionType, targetZone, paramsJSON string
	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Execute a governed action or wire command",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(paramsJSON)
			if err != nil {
				return err
			}
			actorID := viper.GetString("actor-id")
			role := viper.GetString("role")
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				if isGoverned(actionType) {
					out, err := executeGoverned(ctx, e, actionType, params, actorID, role)
					if err != nil {
						return err
					}
					return printJSONOrTable(out)
				}
				if targetZone == "" {
					return fmt.Errorf("--zone required for wire commands")
				}
				res, err := e.ExecuteAction(ctx, engine.ExecuteRequest{
					ActionType: actionType,
					TargetZone: targetZone,
					Parameters: params,
					ActorID:    actorID,
					Role:       role,
				})
				if err != nil {
					return err
				}
				return printJSONOrTable(res)
			})
		},
	}
	cmd.Flags().StringVar(&actionType, "type", "", "action or command type")
	cmd.Flags().StringVar(&targetZone, "zone", "", "target zone (wire commands)")
	cmd.Flags().StringVar(&paramsJSON, "params-json", "{}", "parameters JSON")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func executeGoverned(ctx context.Context, e engine.Engine, actionType string, params map[string]any, actorID, role string) (engine.ActionOutcome, error) {
	switch actionType {
	case action.TypeAdjustSetpoint:
		in, errs := action.ValidateAdjustSetpoint(params)
		if len(errs) > 0 {
			return engine.ActionOutcome{}, errs[0]
		}
		return e.AdjustSetpoint(ctx, in, actorID, role)
	case action.TypeLoadShed:
		in, errs := action.ValidateLoadShed(params)
		if len(errs) > 0 {
			return engine.ActionOutcome{}, errs[0]
		}
		return e.LoadShed(ctx, in, actorID, role)
	case action.TypePreCooling:
		in, errs := action.ValidatePreCooling(params)
		if len(errs) > 0 {
			return engine.ActionOutcome{}, errs[0]
		}
		return e.PreCool(ctx, in, actorID, role)
	default:
		return engine.ActionOutcome{}, fmt.Errorf("unknown action type: %s", actionType)
	}
}

func auditCmd() *cobra.Command {
	audit := &cobra.Command{
		Use:   "audit",
		Short: "Audit trail",
	}
	audit.AddCommand(auditTailCmd())
	audit.AddCommand(auditSummaryCmd())
	return audit
}

func auditTailCmd() *cobra.Command {
	var n int
	var zoneID, actionType, status string
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Show recent audit entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items, err := e.Repo.ListAuditEntries(ctx, repo.AuditFilters{
					ZoneID:     zoneID,
					ActionType: actionType,
					Status:     status,
					Limit:      n,
				})
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"TS", "Action", "Zone", "Actor", "Status", "Summary"})
				for _, entry := range items {
					tw.AppendRow(table.Row{entry.TS, entry.ActionType, entry.TargetZone, entry.ActorID, entry.Status, entry.Summary})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of entries")
	cmd.Flags().StringVar(&zoneID, "zone", "", "zone filter")
	cmd.Flags().StringVar(&actionType, "type", "", "action type filter")
	cmd.Flags().StringVar(&status, "status", "", "status filter")
	return cmd
}

func auditSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Audit trail aggregates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				summary, err := e.Repo.SummarizeAudit(ctx)
				if err != nil {
					return err
				}
				return printJSONOrTable(summary)
			})
		},
	}
	return cmd
}

func descriptorCmd() *cobra.Command {
	desc := &cobra.Command{
		Use:   "descriptor",
		Short: "Descriptor registry checks",
	}
	desc.AddCommand(descriptorCheckCmd())
	return desc
}

func descriptorCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify every registered descriptor is complete",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := newRegistry()
			results := map[string]any{}
			failed := false
			for _, d := range reg.ListAll() {
				ok, errs := reg.ValidateCompleteness(d.ActionID)
				results[d.ActionID] = map[string]any{"complete": ok, "errors": errs}
				if !ok {
					failed = true
				}
			}
			if viper.GetBool("json") {
				if err := printJSON(results); err != nil {
					return err
				}
			} else {
				for id, r := range results {
					fmt.Printf("%s: %v\n", id, r)
				}
			}
			if failed {
				return fmt.Errorf("incomplete descriptors found")
			}
			return nil
		},
	}
	return cmd
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			conn, err := db.Open(db.Config{Workspace: workspace})
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := migrate.Migrate(conn); err != nil {
				return err
			}
			cfg, err := config.LoadOptional(workspace)
			if err != nil {
				return err
			}
			e := engine.New(conn, newRegistry(), cfg)
			if err := e.InitBuilding(cmd.Context()); err != nil {
				return err
			}
			authCfg := server.AuthConfig{
				JWTSecret:             os.Getenv("BUILDLINE_JWT_SECRET"),
				AllowLegacyRoleHeader: os.Getenv("BUILDLINE_ALLOW_LEGACY_HEADERS") == "1",
			}
			if authCfg.JWTSecret == "" && !authCfg.AllowLegacyRoleHeader {
				return fmt.Errorf("BUILDLINE_JWT_SECRET is required for bearer auth (or set BUILDLINE_ALLOW_LEGACY_HEADERS=1 for local use)")
			}
			handler, err := server.New(server.Config{Engine: e, BasePath: basePath, Auth: authCfg})
			if err != nil {
				return err
			}
			if addr == "" {
				addr = "127.0.0.1:8080"
				if cfg != nil && cfg.Server.Host != "" {
					addr = fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
				}
			}
			srv := &http.Server{Addr: addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("Serving Buildline API on http://%s%s (OpenAPI at %s/openapi.json, Swagger UI at /docs)\n", addr, basePath, basePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to config server host:port)")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path")
	return cmd
}

// --- helpers ---

func newRegistry() *descriptor.Registry {
	reg := descriptor.NewRegistry()
	catalog.Register(reg)
	return reg
}

func withEngine(ctx context.Context, fn func(context.Context, engine.Engine) error) error {
	workspace := viper.GetString("workspace")
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	cfg, err := config.LoadOptional(workspace)
	if err != nil {
		return err
	}
	e := engine.New(conn, newRegistry(), cfg)
	return fn(ctx, e)
}

func isGoverned(actionType string) bool {
	for _, t := range action.Types {
		if t == actionType {
			return true
		}
	}
	return false
}

func parseParams(raw string) (map[string]any, error) {
	params := map[string]any{}
	if raw == "" {
		return params, nil
	}
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return nil, fmt.Errorf("invalid --params-json: %w", err)
	}
	return params, nil
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

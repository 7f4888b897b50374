package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"buildline/internal/engine"
	"buildline/internal/repo"
)

type initializeZoneRequest struct {
	Name  string         `json:"name,omitempty"`
	State map[string]any `json:"state,omitempty"`
}

func registerBuilding(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "get-building-state",
		Method:      http.MethodGet,
		Path:        "/building/state",
		Summary:     "All zone states",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []engine.ZoneState `json:"body"`
	}, error) {
		states, err := e.AllZoneStates(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []engine.ZoneState `json:"body"`
		}{Body: nonNilSlice(states)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-zone-state",
		Method:      http.MethodGet,
		Path:        "/building/zones/{zone_id}/state",
		Summary:     "One zone's state",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ZoneID string `path:"zone_id"`
	}) (*struct {
		Body engine.ZoneState `json:"body"`
	}, error) {
		zs, err := e.GetZoneState(ctx, input.ZoneID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body engine.ZoneState `json:"body"`
		}{Body: zs}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "initialize-zone",
		Method:        http.MethodPost,
		Path:          "/building/zones/{zone_id}/initialize",
		Summary:       "Provision a zone",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusConflict,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		ZoneID string                `path:"zone_id"`
		Body   initializeZoneRequest `json:"body"`
	}) (*struct {
		Body engine.ZoneState `json:"body"`
	}, error) {
		if _, err := e.GetZoneState(ctx, input.ZoneID); err == nil {
			return nil, newAPIError(http.StatusConflict, "conflict", "zone already exists", map[string]any{"zone_id": input.ZoneID})
		}
		zs, err := e.InitializeZone(ctx, input.ZoneID, input.Body.Name, input.Body.State)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body engine.ZoneState `json:"body"`
		}{Body: zs}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-building-statistics",
		Method:      http.MethodGet,
		Path:        "/building/statistics",
		Summary:     "Stored-state counters",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body engine.Statistics `json:"body"`
	}, error) {
		stats, err := e.GetStatistics(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body engine.Statistics `json:"body"`
		}{Body: stats}, nil
	})
}

func registerAudit(api huma.API, e engine.Engine) {
	listAudit := func(ctx context.Context, f repo.AuditFilters) ([]AuditEntryResponse, huma.StatusError) {
		items, err := e.Repo.ListAuditEntries(ctx, f)
		if err != nil {
			return nil, handleError(err)
		}
		res := make([]AuditEntryResponse, 0, len(items))
		for _, entry := range items {
			res = append(res, auditEntryResponse(entry))
		}
		return res, nil
	}

	huma.Register(api, huma.Operation{
		OperationID: "audit-history",
		Method:      http.MethodGet,
		Path:        "/audit/history",
		Summary:     "Filtered audit trail",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		ZoneID     string `query:"zone_id"`
		ActionType string `query:"action_type"`
		Status     string `query:"status" enum:",completed,failed,denied"`
		StartTime  string `query:"start_time" format:"date-time"`
		EndTime    string `query:"end_time" format:"date-time"`
		Limit      int    `query:"limit" default:"100"`
		Offset     int    `query:"offset"`
	}) (*struct {
		Body []AuditEntryResponse `json:"body"`
	}, error) {
		res, herr := listAudit(ctx, repo.AuditFilters{
			ZoneID:     input.ZoneID,
			ActionType: input.ActionType,
			Status:     input.Status,
			StartTime:  input.StartTime,
			EndTime:    input.EndTime,
			Limit:      input.Limit,
			Offset:     input.Offset,
		})
		if herr != nil {
			return nil, herr
		}
		return &struct {
			Body []AuditEntryResponse `json:"body"`
		}{Body: res}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "audit-recent",
		Method:      http.MethodGet,
		Path:        "/audit/recent",
		Summary:     "Most recent audit entries",
	}, func(ctx context.Context, input *struct {
		Limit int `query:"limit" default:"20"`
	}) (*struct {
		Body []AuditEntryResponse `json:"body"`
	}, error) {
		res, herr := listAudit(ctx, repo.AuditFilters{Limit: input.Limit})
		if herr != nil {
			return nil, herr
		}
		return &struct {
			Body []AuditEntryResponse `json:"body"`
		}{Body: res}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "audit-summary",
		Method:      http.MethodGet,
		Path:        "/audit/summary",
		Summary:     "Audit trail aggregates",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body repo.AuditSummary `json:"body"`
	}, error) {
		summary, err := e.Repo.SummarizeAudit(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body repo.AuditSummary `json:"body"`
		}{Body: summary}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "audit-by-action",
		Method:      http.MethodGet,
		Path:        "/audit/actions/{action_id}",
		Summary:     "Audit entries for one action",
	}, func(ctx context.Context, input *struct {
		ActionID string `path:"action_id"`
	}) (*struct {
		Body []AuditEntryResponse `json:"body"`
	}, error) {
		res, herr := listAudit(ctx, repo.AuditFilters{ActionID: input.ActionID})
		if herr != nil {
			return nil, herr
		}
		return &struct {
			Body []AuditEntryResponse `json:"body"`
		}{Body: res}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "zone-history",
		Method:      http.MethodGet,
		Path:        "/audit/zones/{zone_id}/history",
		Summary:     "State-change history for one zone",
	}, func(ctx context.Context, input *struct {
		ZoneID string `path:"zone_id"`
		Limit  int    `query:"limit" default:"100"`
		Offset int    `query:"offset"`
	}) (*struct {
		Body []HistoryEntryResponse `json:"body"`
	}, error) {
		items, err := e.Repo.ListStateChanges(ctx, repo.HistoryFilters{
			ZoneID: input.ZoneID,
			Limit:  input.Limit,
			Offset: input.Offset,
		})
		if err != nil {
			return nil, handleError(err)
		}
		res := make([]HistoryEntryResponse, 0, len(items))
		for _, c := range items {
			res = append(res, historyEntryResponse(c))
		}
		return &struct {
			Body []HistoryEntryResponse `json:"body"`
		}{Body: res}, nil
	})
}

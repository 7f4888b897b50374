package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"buildline/internal/action"
	"buildline/internal/descriptor"
	"buildline/internal/engine"
)

type completenessResponse struct {
	ActionID string   `json:"action_id"`
	Complete bool     `json:"complete"`
	Errors   []string `json:"errors"`
}

type policyResponse struct {
	ActionID string                `json:"action_id"`
	Role     string                `json:"role"`
	Policy   descriptor.ODRLPolicy `json:"policy"`
}

type schemaResponse struct {
	Body []byte `contentType:"application/json"`
}

func registerDescriptors(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "export-descriptors",
		Method:      http.MethodGet,
		Path:        "/descriptors",
		Summary:     "Export all action descriptors",
		Description: "The full registry, keyed by action_id, for UI form generation and graph ingestion.",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]*descriptor.ActionDescriptor `json:"body"`
	}, error) {
		return &struct {
			Body map[string]*descriptor.ActionDescriptor `json:"body"`
		}{Body: e.Registry.Export()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-descriptor",
		Method:      http.MethodGet,
		Path:        "/descriptors/{action_id}",
		Summary:     "Get one action descriptor",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ActionID string `path:"action_id"`
	}) (*struct {
		Body *descriptor.ActionDescriptor `json:"body"`
	}, error) {
		d := e.Registry.Get(input.ActionID)
		if d == nil {
			return nil, newAPIError(http.StatusNotFound, "not_found", "unknown action: "+input.ActionID, nil)
		}
		return &struct {
			Body *descriptor.ActionDescriptor `json:"body"`
		}{Body: d}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "check-descriptor-completeness",
		Method:      http.MethodGet,
		Path:        "/descriptors/{action_id}/completeness",
		Summary:     "Check that a descriptor carries every governance element",
	}, func(ctx context.Context, input *struct {
		ActionID string `path:"action_id"`
	}) (*struct {
		Body completenessResponse `json:"body"`
	}, error) {
		ok, errs := e.Registry.ValidateCompleteness(input.ActionID)
		return &struct {
			Body completenessResponse `json:"body"`
		}{Body: completenessResponse{
			ActionID: input.ActionID,
			Complete: ok,
			Errors:   nonNilSlice(errs),
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-descriptor-schema",
		Method:      http.MethodGet,
		Path:        "/descriptors/{action_id}/schema",
		Summary:     "Get the JSON Schema for an action's input",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ActionID string `path:"action_id"`
	}) (*schemaResponse, error) {
		schema := action.InputSchema(input.ActionID)
		if schema == nil {
			return nil, newAPIError(http.StatusNotFound, "not_found", "no input schema for action: "+input.ActionID, nil)
		}
		// Pre-marshal so the schema's own MarshalJSON drives the output
		// (lowercase JSON-Schema keys, $ref, inline extensions).
		data, err := json.Marshal(schema)
		if err != nil {
			return nil, err
		}
		return &schemaResponse{Body: data}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-descriptor-permissions",
		Method:      http.MethodGet,
		Path:        "/descriptors/{action_id}/permissions/{role}",
		Summary:     "Get the ODRL policy for one role",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ActionID string `path:"action_id"`
		Role     string `path:"role" enum:"operator,facility_manager,energy_manager,contractor"`
	}) (*struct {
		Body policyResponse `json:"body"`
	}, error) {
		policy, ok := e.PolicyFor(input.ActionID, input.Role)
		if !ok {
			return nil, newAPIError(http.StatusNotFound, "not_found", "no policy for action/role", map[string]any{
				"action_id": input.ActionID,
				"role":      input.Role,
			})
		}
		return &struct {
			Body policyResponse `json:"body"`
		}{Body: policyResponse{
			ActionID: input.ActionID,
			Role:     input.Role,
			Policy:   policy,
		}}, nil
	})
}

package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"buildline/internal/action"
	"buildline/internal/engine"
)

func registerActions(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "execute-action",
		Method:      http.MethodPost,
		Path:        "/actions/execute",
		Summary:     "Execute a wire command",
		Description: "Validates the command against the parameter vocabulary and applies it to the target zone.",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
			http.StatusUnprocessableEntity,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		Body ExecuteActionRequest `json:"body"`
	}) (*struct {
		Body engine.ExecuteResult `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		if input.Body.ActionType == "" || input.Body.TargetZone == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "action_type and target_zone are required", nil)
		}
		principal, authErr := principalFromRequest(ctx)
		if authErr != nil {
			return nil, authErr
		}
		res, err := e.ExecuteAction(ctx, engine.ExecuteRequest{
			ActionType: input.Body.ActionType,
			TargetZone: input.Body.TargetZone,
			Parameters: input.Body.Parameters,
			ActorID:    principal.ActorID,
			Role:       principal.Role,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body engine.ExecuteResult `json:"body"`
		}{Body: res}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "validate-action",
		Method:      http.MethodPost,
		Path:        "/actions/validate",
		Summary:     "Validate action parameters without executing",
		Description: "Runs catalog input validation for governed actions and vocabulary validation for wire commands.",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body ValidateActionRequest `json:"body"`
	}) (*struct {
		Body ValidationResponse `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		if input.Body.ActionType == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "action_type is required", nil)
		}
		resp := validateAny(e, input.Body.ActionType, input.Body.Parameters)
		return &struct {
			Body ValidationResponse `json:"body"`
		}{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-action-types",
		Method:      http.MethodGet,
		Path:        "/actions/types",
		Summary:     "List supported action and command types",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body struct {
			Actions  []string       `json:"actions"`
			Commands map[string]any `json:"commands"`
		} `json:"body"`
	}, error) {
		out := &struct {
			Body struct {
				Actions  []string       `json:"actions"`
				Commands map[string]any `json:"commands"`
			} `json:"body"`
		}{}
		out.Body.Actions = action.Types
		out.Body.Commands = map[string]any{}
		for _, name := range e.Rules.Commands() {
			spec, _ := e.Rules.Spec(name)
			out.Body.Commands[name] = spec
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-active-actions",
		Method:      http.MethodGet,
		Path:        "/actions/active",
		Summary:     "List running actions",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []ActionResponse `json:"body"`
	}, error) {
		items, err := e.ActiveActions(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		res := make([]ActionResponse, 0, len(items))
		for _, a := range items {
			res = append(res, actionResponse(a))
		}
		return &struct {
			Body []ActionResponse `json:"body"`
		}{Body: res}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-action",
		Method:      http.MethodGet,
		Path:        "/actions/{action_id}",
		Summary:     "Get a tracked action",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ActionID string `path:"action_id"`
	}) (*struct {
		Body ActionResponse `json:"body"`
	}, error) {
		a, err := e.GetAction(ctx, input.ActionID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ActionResponse `json:"body"`
		}{Body: actionResponse(a)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "cancel-action",
		Method:      http.MethodDelete,
		Path:        "/actions/{action_id}",
		Summary:     "Cancel a running action",
		Errors:      []int{http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ActionID string `path:"action_id"`
	}) (*struct {
		Body map[string]any `json:"body"`
	}, error) {
		ok, err := e.CancelAction(ctx, input.ActionID)
		if err != nil {
			return nil, handleError(err)
		}
		if !ok {
			return nil, newAPIError(http.StatusConflict, "conflict", "action is not running", map[string]any{"action_id": input.ActionID})
		}
		return &struct {
			Body map[string]any `json:"body"`
		}{Body: map[string]any{"action_id": input.ActionID, "status": engine.StatusCanceled}}, nil
	})
}

func registerTypedActions(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "adjust-setpoint",
		Method:      http.MethodPost,
		Path:        "/actions/adjust-setpoint",
		Summary:     "Adjust a zone temperature setpoint",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusForbidden,
			http.StatusNotFound,
			http.StatusUnprocessableEntity,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		Body action.AdjustSetpointInput `json:"body"`
	}) (*struct {
		Body engine.ActionOutcome `json:"body"`
	}, error) {
		principal, authErr := principalFromRequest(ctx)
		if authErr != nil {
			return nil, authErr
		}
		out, err := e.AdjustSetpoint(ctx, &input.Body, principal.ActorID, principal.Role)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body engine.ActionOutcome `json:"body"`
		}{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "load-shed",
		Method:      http.MethodPost,
		Path:        "/actions/load-shed",
		Summary:     "Shed electrical load across zones",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusForbidden,
			http.StatusNotFound,
			http.StatusUnprocessableEntity,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		Body action.LoadShedInput `json:"body"`
	}) (*struct {
		Body engine.ActionOutcome `json:"body"`
	}, error) {
		principal, authErr := principalFromRequest(ctx)
		if authErr != nil {
			return nil, authErr
		}
		out, err := e.LoadShed(ctx, &input.Body, principal.ActorID, principal.Role)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body engine.ActionOutcome `json:"body"`
		}{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "pre-cooling",
		Method:      http.MethodPost,
		Path:        "/actions/pre-cooling",
		Summary:     "Pre-cool zones before occupancy",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusForbidden,
			http.StatusNotFound,
			http.StatusUnprocessableEntity,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		Body action.PreCoolingInput `json:"body"`
	}) (*struct {
		Body engine.ActionOutcome `json:"body"`
	}, error) {
		principal, authErr := principalFromRequest(ctx)
		if authErr != nil {
			return nil, authErr
		}
		out, err := e.PreCool(ctx, &input.Body, principal.ActorID, principal.Role)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body engine.ActionOutcome `json:"body"`
		}{Body: out}, nil
	})
}

// validateAny dispatches between the two validation vocabularies: governed
// catalog actions and low-level wire commands.
func validateAny(e engine.Engine, actionType string, params map[string]any) ValidationResponse {
	for _, t := range action.Types {
		if t == actionType {
			errs := action.ValidateParams(actionType, params)
			return ValidationResponse{
				Valid:    len(errs) == 0,
				Errors:   nonNilSlice(errs),
				Warnings: []string{},
			}
		}
	}
	res := e.Rules.Validate(actionType, params)
	return ValidationResponse{
		Valid:    res.Valid,
		Errors:   nonNilSlice(res.Errors),
		Warnings: nonNilSlice(res.Warnings),
	}
}

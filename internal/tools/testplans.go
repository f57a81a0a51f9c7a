package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/golovatskygroup/mcp-ado/internal/errs"
	"github.com/golovatskygroup/mcp-ado/internal/normalize"
	"github.com/golovatskygroup/mcp-ado/pkg/mcp"
)

// testOutcomes are the outcome values accepted as a test point filter.
var testOutcomes = map[string]string{
	"failed":      "Failed",
	"passed":      "Passed",
	"unspecified": "Unspecified",
}

func (h *Handler) registerTestPlanTools() {
	h.register(mcp.Tool{
		Name:        "list_test_plans",
		Description: "List the test plans of a project.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project": {"type": "string"},
				"active_only": {"type": "boolean", "description": "Only return plans in the active state"},
				"limit": {"type": "integer", "description": "Max plans to return (default: 50, ceiling: 200)"}
			},
			"required": ["project"]
		}`),
	}, h.listTestPlans)

	h.register(mcp.Tool{
		Name:        "list_test_suites",
		Description: "List the test suites of a test plan.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project": {"type": "string"},
				"plan_id": {"type": "integer"},
				"limit": {"type": "integer", "description": "Max suites to return (default: 50, ceiling: 200)"}
			},
			"required": ["project", "plan_id"]
		}`),
	}, h.listTestSuites)

	h.register(mcp.Tool{
		Name:        "list_test_points",
		Description: "List the test points of a suite with their latest outcome, optionally filtered by outcome.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project": {"type": "string"},
				"plan_id": {"type": "integer"},
				"suite_id": {"type": "integer"},
				"outcome": {"type": "string", "enum": ["Failed", "Passed", "Unspecified"], "description": "Only return points with this outcome"},
				"limit": {"type": "integer", "description": "Max points to return (default: 50, ceiling: 200)"}
			},
			"required": ["project", "plan_id", "suite_id"]
		}`),
	}, h.listTestPoints)
}

type testPlanInput struct {
	Project    string `json:"project"`
	PlanID     int    `json:"plan_id,omitempty"`
	SuiteID    int    `json:"suite_id,omitempty"`
	Outcome    string `json:"outcome,omitempty"`
	ActiveOnly bool   `json:"active_only,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

func (h *Handler) listTestPlans(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in testPlanInput
	if err := unmarshalInput(args, &in); err != nil {
		return errorResult(err), nil
	}
	if strings.TrimSpace(in.Project) == "" {
		return errorResult(errs.Validation("project is required")), nil
	}
	limit := clampLimit(in.Limit, defaultLimit, maxLimit)
	plans, err := h.client.ListTestPlans(ctx, in.Project, limit)
	if err != nil {
		return errorResult(err), nil
	}
	normalized := normalize.TestPlans(plans)
	if in.ActiveOnly {
		filtered := normalized[:0]
		for _, plan := range normalized {
			if plan.State != nil && strings.EqualFold(*plan.State, "active") {
				filtered = append(filtered, plan)
			}
		}
		normalized = filtered
	}
	return jsonResult(normalized), nil
}

func (h *Handler) listTestSuites(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in testPlanInput
	if err := unmarshalInput(args, &in); err != nil {
		return errorResult(err), nil
	}
	if strings.TrimSpace(in.Project) == "" {
		return errorResult(errs.Validation("project is required")), nil
	}
	if in.PlanID <= 0 {
		return errorResult(errs.Validation("plan_id must be a positive integer")), nil
	}
	limit := clampLimit(in.Limit, defaultLimit, maxLimit)
	suites, err := h.client.ListTestSuites(ctx, in.Project, in.PlanID, limit)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(normalize.TestSuites(suites)), nil
}

func (h *Handler) listTestPoints(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in testPlanInput
	if err := unmarshalInput(args, &in); err != nil {
		return errorResult(err), nil
	}
	switch {
	case strings.TrimSpace(in.Project) == "":
		return errorResult(errs.Validation("project is required")), nil
	case in.PlanID <= 0:
		return errorResult(errs.Validation("plan_id must be a positive integer")), nil
	case in.SuiteID <= 0:
		return errorResult(errs.Validation("suite_id must be a positive integer")), nil
	}
	var outcomeFilter string
	if in.Outcome != "" {
		canonical, ok := testOutcomes[strings.ToLower(in.Outcome)]
		if !ok {
			return errorResult(errs.Validation("outcome must be one of Failed, Passed, Unspecified")), nil
		}
		outcomeFilter = canonical
	}
	limit := clampLimit(in.Limit, defaultLimit, maxLimit)
	points, err := h.client.ListTestPoints(ctx, in.Project, in.PlanID, in.SuiteID, limit)
	if err != nil {
		return errorResult(err), nil
	}
	normalized := normalize.TestPoints(points)
	if outcomeFilter != "" {
		filtered := normalized[:0]
		for _, point := range normalized {
			if point.Outcome != nil && *point.Outcome == outcomeFilter {
				filtered = append(filtered, point)
			}
		}
		normalized = filtered
	}
	return jsonResult(normalized), nil
}

// Package tools is the façade between the MCP surface and the upstream
// client: one handler per tool, argument validation before any network
// call, limit clamping, and translation of failures into the typed error
// taxonomy.
package tools

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/golovatskygroup/mcp-ado/internal/ado"
	"github.com/golovatskygroup/mcp-ado/internal/errs"
	"github.com/golovatskygroup/mcp-ado/pkg/mcp"
)

// Pagination bounds. Caller-supplied limits are clamped against these hard
// ceilings so no tool can trigger unbounded upstream fetches.
const (
	defaultLimit    = 50
	maxLimit        = 200
	maxItemsLimit   = 500
	defaultPageSize = 100
)

type toolFunc func(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error)

type toolDef struct {
	tool    mcp.Tool
	handler toolFunc
}

// Handler dispatches tool invocations against the upstream client.
type Handler struct {
	client *ado.Client
	defs   map[string]toolDef
	order  []string
}

// NewHandler wires every tool to the given upstream client.
func NewHandler(client *ado.Client) *Handler {
	h := &Handler{
		client: client,
		defs:   make(map[string]toolDef),
	}
	h.registerProjectTools()
	h.registerWorkItemTools()
	h.registerGitTools()
	h.registerPullRequestTools()
	h.registerTestPlanTools()
	return h
}

func (h *Handler) register(tool mcp.Tool, fn toolFunc) {
	h.defs[tool.Name] = toolDef{tool: tool, handler: fn}
	h.order = append(h.order, tool.Name)
}

// Tools lists every tool in registration order.
func (h *Handler) Tools() []mcp.Tool {
	out := make([]mcp.Tool, 0, len(h.order))
	for _, name := range h.order {
		out = append(out, h.defs[name].tool)
	}
	return out
}

// Names returns the sorted tool names (used for closest-match suggestions).
func (h *Handler) Names() []string {
	names := make([]string, 0, len(h.defs))
	for name := range h.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Known reports whether a tool name is registered.
func (h *Handler) Known(name string) bool {
	_, ok := h.defs[name]
	return ok
}

// Handle validates the arguments against the tool's declared schema and runs
// the handler. Validation failures never reach the network.
func (h *Handler) Handle(ctx context.Context, name string, args json.RawMessage) (*mcp.CallToolResult, error) {
	def, ok := h.defs[name]
	if !ok {
		return errorResult(errs.Validation("unknown tool %q", name)), nil
	}
	if err := validateArgs(name, def.tool.InputSchema, args); err != nil {
		return errorResult(err), nil
	}
	return def.handler(ctx, args)
}

var schemaCache sync.Map // key -> *jsonschema.Schema

func compileSchema(toolName string, schema json.RawMessage) (*jsonschema.Schema, error) {
	sum := sha256.Sum256(schema)
	key := toolName + ":" + hex.EncodeToString(sum[:])
	if v, ok := schemaCache.Load(key); ok {
		return v.(*jsonschema.Schema), nil
	}
	s, err := jsonschema.CompileString(toolName+".json", string(schema))
	if err != nil {
		return nil, err
	}
	schemaCache.Store(key, s)
	return s, nil
}

func validateArgs(toolName string, schema, args json.RawMessage) error {
	if len(schema) == 0 {
		return nil
	}
	s, err := compileSchema(toolName, schema)
	if err != nil {
		return fmt.Errorf("invalid inputSchema for %s: %w", toolName, err)
	}
	var decoded any = map[string]any{}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &decoded); err != nil {
			return errs.Validation("arguments are not valid JSON: %v", err)
		}
	}
	if err := s.Validate(decoded); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			leaf := firstLeaf(ve)
			loc := leaf.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			return errs.Validation("invalid arguments at %s: %s", loc, leaf.Message)
		}
		return errs.Validation("invalid arguments: %v", err)
	}
	return nil
}

func firstLeaf(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	if len(err.Causes) == 0 {
		return err
	}
	return firstLeaf(err.Causes[0])
}

// clampLimit applies the default and the hard ceiling to a caller limit.
func clampLimit(limit, def, ceiling int) int {
	if limit <= 0 {
		limit = def
	}
	return min(limit, ceiling)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.ContentBlock{{Type: "text", Text: text}}}
}

// jsonResult renders a normalized result object as indented JSON text.
func jsonResult(v any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(errs.From(err))
	}
	return textResult(string(b))
}

// errorResult renders a typed error as a structured, machine-readable tool
// failure. Raw upstream stack traces never cross this boundary.
func errorResult(err error) *mcp.CallToolResult {
	b, merr := json.Marshal(errs.From(err))
	if merr != nil {
		b = []byte(fmt.Sprintf(`{"kind":"upstream","message":%q}`, err.Error()))
	}
	return &mcp.CallToolResult{
		Content: []mcp.ContentBlock{{Type: "text", Text: string(b)}},
		IsError: true,
	}
}

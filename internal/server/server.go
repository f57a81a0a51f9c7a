// Package server runs the MCP stdio loop: it reads JSON-RPC requests,
// dispatches protocol methods, and hands tool invocations to the handler.
// Stdout carries only protocol frames; all logging goes to stderr.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/golovatskygroup/mcp-ado/internal/tools"
	"github.com/golovatskygroup/mcp-ado/pkg/mcp"
)

const (
	protocolVersion = "2024-11-05"
	serverName      = "mcp-ado"
	serverVersion   = "1.0.0"
)

// Server adapts an Azure DevOps Server/TFS collection to the MCP protocol.
type Server struct {
	transport *mcp.Transport
	handler   *tools.Handler
	logf      func(format string, args ...any)
	wg        sync.WaitGroup
}

// Option customizes a Server.
type Option func(*Server)

// WithTransport overrides the stdio transport (used by tests).
func WithTransport(t *mcp.Transport) Option {
	return func(s *Server) { s.transport = t }
}

// WithLogf overrides the stderr logger.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(s *Server) { s.logf = logf }
}

// New creates a server over stdin/stdout serving the handler's tools.
func New(handler *tools.Handler, opts ...Option) *Server {
	s := &Server{
		transport: mcp.NewTransport(os.Stdin, os.Stdout),
		handler:   handler,
		logf:      logf,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run reads messages until EOF or context cancellation. Tool calls run in
// their own goroutines so a slow upstream request does not block the loop;
// the transport serializes response writes.
func (s *Server) Run(ctx context.Context) error {
	s.logf("serving %d tools", len(s.handler.Tools()))
	for {
		if err := ctx.Err(); err != nil {
			s.wg.Wait()
			return err
		}
		req, err := s.transport.ReadMessage()
		if err != nil {
			s.wg.Wait()
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}

		switch req.Method {
		case "initialize":
			s.write(s.handleInitialize(req))
		case "notifications/initialized":
			// Notifications get no response.
		case "tools/list":
			s.write(s.handleListTools(req))
		case "tools/call":
			s.wg.Add(1)
			go func(req *mcp.Request) {
				defer s.wg.Done()
				s.write(s.handleCallTool(ctx, req))
			}(req)
		case "ping":
			resp, _ := mcp.NewResponse(req.ID, map[string]any{})
			s.write(resp)
		default:
			s.write(mcp.NewErrorResponse(req.ID, mcp.MethodNotFound, "method not found: "+req.Method))
		}
	}
}

func (s *Server) write(resp *mcp.Response) {
	if resp == nil {
		return
	}
	if err := s.transport.WriteResponse(resp); err != nil {
		s.logf("write response: %v", err)
	}
}

func (s *Server) handleInitialize(req *mcp.Request) *mcp.Response {
	result := mcp.InitializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities: mcp.ServerCapabilities{
			Tools: &mcp.ToolsCapability{},
		},
		ServerInfo: mcp.ServerInfo{
			Name:    serverName,
			Version: serverVersion,
		},
		Instructions: s.buildInstructions(),
	}
	resp, err := mcp.NewResponse(req.ID, result)
	if err != nil {
		return mcp.NewErrorResponse(req.ID, mcp.InternalError, err.Error())
	}
	return resp
}

func (s *Server) handleListTools(req *mcp.Request) *mcp.Response {
	resp, err := mcp.NewResponse(req.ID, mcp.ListToolsResult{Tools: s.handler.Tools()})
	if err != nil {
		return mcp.NewErrorResponse(req.ID, mcp.InternalError, err.Error())
	}
	return resp
}

func (s *Server) handleCallTool(ctx context.Context, req *mcp.Request) *mcp.Response {
	var params mcp.CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return mcp.NewErrorResponse(req.ID, mcp.InvalidParams, "invalid params: "+err.Error())
	}

	if !s.handler.Known(params.Name) {
		msg := fmt.Sprintf("tool %q not found", params.Name)
		if match := closestTool(params.Name, s.handler.Names()); match != "" {
			msg += fmt.Sprintf(", did you mean %q?", match)
		}
		result := &mcp.CallToolResult{
			Content: []mcp.ContentBlock{{Type: "text", Text: msg}},
			IsError: true,
		}
		resp, _ := mcp.NewResponse(req.ID, result)
		return resp
	}

	call := uuid.NewString()[:8]
	start := time.Now()
	s.logf("call %s tool=%s", call, params.Name)

	result, err := s.handler.Handle(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logf("call %s tool=%s failed after %s: %v", call, params.Name, time.Since(start).Round(time.Millisecond), err)
		return mcp.NewErrorResponse(req.ID, mcp.InternalError, err.Error())
	}
	s.logf("call %s tool=%s done in %s error=%v", call, params.Name, time.Since(start).Round(time.Millisecond), result.IsError)

	resp, err := mcp.NewResponse(req.ID, result)
	if err != nil {
		return mcp.NewErrorResponse(req.ID, mcp.InternalError, err.Error())
	}
	return resp
}

// closestTool suggests a registered tool name for a typo'd request.
func closestTool(name string, known []string) string {
	matches := fuzzy.RankFindNormalizedFold(name, known)
	if len(matches) == 0 {
		return ""
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.Distance < best.Distance {
			best = m
		}
	}
	return best.Target
}

func (s *Server) buildInstructions() string {
	var sb strings.Builder
	sb.WriteString("Azure DevOps Server/TFS adapter.\n\n")
	sb.WriteString("Tools cover team projects, work items (WIQL and structured queries),\n")
	sb.WriteString("git repositories, pull requests and test plans against an on-prem\n")
	sb.WriteString("collection. List results are capped; pass `limit` to adjust within\n")
	sb.WriteString("each tool's ceiling.\n\nAvailable tools:\n")
	for _, t := range s.handler.Tools() {
		sb.WriteString("- " + t.Name + ": " + t.Description + "\n")
	}
	return sb.String()
}

func logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "[mcp-ado] "+format+"\n", args...)
}

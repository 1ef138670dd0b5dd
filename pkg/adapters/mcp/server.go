package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/intake"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/ports"
	"github.com/aretw0/intake/pkg/validation"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const resultsURI = "intake://results"

// Processor runs the validation pipeline.
type Processor interface {
	Process(ctx context.Context, u validation.Upload) (domain.Report, error)
}

// ValidateArgs are the arguments of the validate_file tool.
type ValidateArgs struct {
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
	Content  string `json:"content"`
}

// ValidateResponse is the structured output of validate_file.
type ValidateResponse struct {
	Report domain.Report `json:"report" jsonschema_description:"Outcome of every rule that ran"`
	Error  string        `json:"error,omitempty" jsonschema_description:"Set when the file could not be parsed"`
}

// ListArgs are the arguments of the list_results tool.
type ListArgs struct {
	FileName string `json:"file_name"`
	Limit    int    `json:"limit"`
}

// ListResponse is the structured output of list_results.
type ListResponse struct {
	Results []domain.Record `json:"results" jsonschema_description:"Recorded outcomes, newest first"`
}

// Server exposes the validation pipeline as an MCP Server.
type Server struct {
	validator Processor
	store     ports.ResultStore
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(v Processor, store ports.ResultStore) *Server {
	s := &Server{
		validator: v,
		store:     store,
		mcpServer: server.NewMCPServer("intake-mcp", strings.TrimSpace(intake.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	validateTool := mcp.NewTool("validate_file",
		mcp.WithDescription("Validate a CSV or TXT report file and record every rule outcome."),
		mcp.WithString("file_name", mcp.Required(), mcp.Description("File name including its extension, e.g. report.csv")),
		mcp.WithString("file_type", mcp.Required(), mcp.Description("Declared type: csv or txt"), mcp.Enum("csv", "txt")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Full file content")),
		mcp.WithOutputSchema[ValidateResponse](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))

	listTool := mcp.NewTool("list_results",
		mcp.WithDescription("List recorded validation outcomes, newest first."),
		mcp.WithString("file_name", mcp.Description("Only records of this file (optional)")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of records (default 50)")),
		mcp.WithOutputSchema[ListResponse](),
	)
	s.mcpServer.AddTool(listTool, mcp.NewStructuredToolHandler(s.handleList))
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args ValidateArgs) (ValidateResponse, error) {
	if args.FileName == "" || args.FileType == "" {
		return ValidateResponse{}, fmt.Errorf("file_name and file_type are required")
	}

	report, err := s.validator.Process(ctx, validation.Upload{
		FileName: args.FileName,
		FileType: domain.FileType(args.FileType),
		Data:     []byte(args.Content),
	})
	if err != nil {
		var perr *domain.ParseError
		if errors.As(err, &perr) || errors.Is(err, domain.ErrUnsupportedFileType) {
			return ValidateResponse{Report: report, Error: err.Error()}, nil
		}
		slog.Error("MCP validate_file failed", "error", err, "file_name", args.FileName)
		return ValidateResponse{}, fmt.Errorf("validation failed: %w", err)
	}
	return ValidateResponse{Report: report}, nil
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest, args ListArgs) (ListResponse, error) {
	limit := args.Limit
	if limit <= 0 {
		limit = 50
	}
	recs, err := s.store.List(ctx, domain.Filter{FileName: args.FileName, Limit: limit})
	if err != nil {
		return ListResponse{}, fmt.Errorf("list failed: %w", err)
	}
	return ListResponse{Results: recs}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(resultsURI, "Recent validation results",
		mcp.WithResourceDescription("The 50 most recent recorded outcomes"),
		mcp.WithMIMEType("application/json"),
	), s.readResults)
}

func (s *Server) readResults(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	recs, err := s.store.List(ctx, domain.Filter{Limit: 50})
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	jsonBytes, _ := json.Marshal(recs)

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      resultsURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

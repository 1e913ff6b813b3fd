package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/amd2esm/pkg/amd"
)

// Tool name constants.
const (
	ToolNameConvert        = "amd_convert"
	ToolNameRewriteImports = "amd_rewrite_imports"
)

// MaxCodeInputBytes is the maximum allowed size for inline code input (1 MB).
const MaxCodeInputBytes = 1 << 20

// Sentinel errors for tool input validation.
var (
	// ErrEmptyCode indicates the code parameter is empty.
	ErrEmptyCode = errors.New("code parameter is required and must not be empty")
	// ErrCodeTooLarge indicates the code input exceeds the size limit.
	ErrCodeTooLarge = errors.New("code input exceeds maximum size")
)

const (
	convertToolDescription = "Convert an AMD module (define/require with a dependency array and factory) " +
		"into ES module import/export syntax. Code without a module definition is returned unchanged."

	rewriteImportsToolDescription = "Append .js to relative, extensionless import paths whose default " +
		"binding ends in Component, Directive, Filter or Service (or the given suffixes)."
)

// ConvertInput is the input schema for the amd_convert tool.
type ConvertInput struct {
	Code     string `json:"code"               jsonschema:"JavaScript source of one AMD module"`
	Beautify bool   `json:"beautify,omitempty" jsonschema:"reformat the generated module code"`
}

// RewriteImportsInput is the input schema for the amd_rewrite_imports tool.
type RewriteImportsInput struct {
	Code     string   `json:"code"               jsonschema:"JavaScript source with ES imports"`
	Suffixes []string `json:"suffixes,omitempty" jsonschema:"binding suffixes selecting imports (default: Component Directive Filter Service)"`
}

// ConvertOutput is the structured result of amd_convert.
type ConvertOutput struct {
	Code       string   `json:"code"`
	Changed    bool     `json:"changed"`
	Shape      string   `json:"shape"`
	Imports    []string `json:"imports,omitempty"`
	Components []string `json:"components,omitempty"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

func (s *Server) handleConvert(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input ConvertInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	validateErr := validateCodeInput(input.Code)
	if validateErr != nil {
		return errorResult(validateErr)
	}

	res, err := amd.ConvertResult(input.Code, amd.Options{Beautify: input.Beautify, Logger: s.logger})
	if err != nil {
		s.logger.DebugContext(ctx, "convert rejected", slog.Any("error", err))

		return errorResult(err)
	}

	out := ConvertOutput{
		Code:       res.Code,
		Changed:    res.Changed,
		Shape:      res.Shape,
		Components: res.Components,
	}

	for _, dep := range res.Imports {
		out.Imports = append(out.Imports, fmt.Sprintf("%s from %s", dep.Binding, dep.Path))
	}

	return textResult(res.Code, out)
}

func (s *Server) handleRewriteImports(
	_ context.Context, _ *mcpsdk.CallToolRequest, input RewriteImportsInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	validateErr := validateCodeInput(input.Code)
	if validateErr != nil {
		return errorResult(validateErr)
	}

	code, err := amd.RewriteImportPaths(input.Code, amd.ImportPathOptions{Suffixes: input.Suffixes})
	if err != nil {
		return errorResult(err)
	}

	return textResult(code, code)
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// textResult returns text as content and data as structured output.
func textResult(text string, data any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: text},
		},
	}, ToolOutput{Data: data}, nil
}

func validateCodeInput(code string) error {
	if code == "" {
		return ErrEmptyCode
	}

	if len(code) > MaxCodeInputBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrCodeTooLarge, len(code), MaxCodeInputBytes)
	}

	return nil
}

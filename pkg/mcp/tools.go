package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool name constants.
const (
	ToolNameAlgorithms = "sort_algorithms"
	ToolNameRun        = "sort_run"
)

// Input size limits.
const (
	// MaxValues is the longest explicit array sort_run accepts.
	MaxValues = 1000

	// MaxTraceValues is the longest array whose event trace is returned.
	MaxTraceValues = 50
)

// Sentinel errors for tool input validation.
var (
	// ErrEmptyAlgorithm indicates the algorithm parameter is empty.
	ErrEmptyAlgorithm = errors.New("algorithm parameter is required and must not be empty")
	// ErrValuesAndSize indicates both values and size were given.
	ErrValuesAndSize = errors.New("values and size are mutually exclusive")
	// ErrTooManyValues indicates the explicit array exceeds MaxValues.
	ErrTooManyValues = errors.New("values exceed maximum length")
	// ErrTraceTooLarge indicates include_events was requested for a long array.
	ErrTraceTooLarge = errors.New("event trace requested for too large an array")
	// ErrNonPositiveValue indicates an explicit value is zero or negative.
	ErrNonPositiveValue = errors.New("values must be positive integers")
)

// Input types (auto-generate JSON schemas via struct tags).

// AlgorithmsInput is the input schema for the sort_algorithms tool.
type AlgorithmsInput struct{}

// RunInput is the input schema for the sort_run tool.
type RunInput struct {
	Algorithm     string `json:"algorithm"                jsonschema:"algorithm id: bubble selection insertion merge or quick"`
	Values        []int  `json:"values,omitempty"         jsonschema:"explicit array of positive integers to sort; mutually exclusive with size"`
	Size          int    `json:"size,omitempty"           jsonschema:"length of a generated random array (5 to 200, default 50)"`
	Seed          uint64 `json:"seed,omitempty"           jsonschema:"seed for the generated array; zero draws a random one"`
	IncludeEvents bool   `json:"include_events,omitempty" jsonschema:"include the instrumentation event trace (arrays up to 50 values)"`
}

// Output type (used as structured output for generic AddTool).

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
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

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

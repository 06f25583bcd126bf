package tool

import (
	"sort"

	"roborail-assistant/internal/domain/llm"
)

// FileSearchToolName is the function name advertised for grounded retrieval.
const FileSearchToolName = "file_search"

// Resolve translates the tool-enablement configuration into the tool
// definitions advertised on the model call.
//
// The file_search function is emitted whenever a vector store is linked,
// regardless of the fileSearchEnabled flag, so retrieval grounding is always
// available. MCP configuration never produces a model-facing tool spec here;
// MCP tools are advertised and executed through the dispatcher's external
// server path. file_search precedes user functions when both are present.
func Resolve(cfg Configuration, functions []FunctionDefinition) []llm.ToolDefinition {
	var tools []llm.ToolDefinition

	if cfg.VectorStore.ID != "" {
		tools = append(tools, fileSearchDefinition(cfg.VectorStore.ID))
	}

	if cfg.FunctionsEnabled {
		for _, fn := range functions {
			tools = append(tools, fn.ToLLMTool())
		}
	}

	return tools
}

// ToLLMTool converts a user-defined function into a strict OpenAI-compatible
// tool definition: every declared parameter is required and additional
// properties are rejected.
func (f FunctionDefinition) ToLLMTool() llm.ToolDefinition {
	properties := make(map[string]any, len(f.Parameters))
	required := make([]string, 0, len(f.Parameters))
	for name, schema := range f.Parameters {
		properties[name] = schema
	}
	for _, name := range sortedKeys(f.Parameters) {
		required = append(required, name)
	}

	return llm.ToolDefinition{
		Type: "function",
		Function: llm.ToolFunctionSchema{
			Name:        f.Name,
			Description: f.Description,
			Parameters: map[string]any{
				"type":                 "object",
				"properties":           properties,
				"required":             required,
				"additionalProperties": false,
			},
			Strict: true,
		},
	}
}

// ToLLMTool converts MCP tool metadata into an OpenAI-compatible definition
// for advertisement on the model call.
func (t MCPTool) ToLLMTool() llm.ToolDefinition {
	params := t.InputSchema
	if params == nil {
		params = map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return llm.ToolDefinition{
		Type: "function",
		Function: llm.ToolFunctionSchema{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  params,
		},
	}
}

func fileSearchDefinition(vectorStoreID string) llm.ToolDefinition {
	return llm.ToolDefinition{
		Type: "function",
		Function: llm.ToolFunctionSchema{
			Name:        FileSearchToolName,
			Description: "Search the linked document store for passages relevant to the query.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Search query to run against the document store.",
					},
					"vector_store_id": map[string]any{
						"type":  "string",
						"const": vectorStoreID,
					},
				},
				"required":             []string{"query", "vector_store_id"},
				"additionalProperties": false,
			},
		},
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

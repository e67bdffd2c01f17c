package agent

import (
	"context"

	"github.com/contentduet/duet/internal/ai"
)

// Tool is an executable capability the proactive agent can offer to
// its provider. The provider decides autonomously whether and how
// often to invoke it.
type Tool interface {
	// Name is how the provider addresses the tool.
	Name() string

	// Description tells the provider what the tool does.
	Description() string

	// Parameters is the JSON schema of the tool arguments.
	Parameters() map[string]interface{}

	// Execute runs the tool. Execution failures are returned as
	// values, not errors, so the provider can react to them.
	Execute(ctx context.Context, args map[string]interface{}) (interface{}, error)
}

// BaseTool carries the static half of a Tool.
type BaseTool struct {
	name        string
	description string
	parameters  map[string]interface{}
}

func NewBaseTool(name, description string, parameters map[string]interface{}) BaseTool {
	return BaseTool{name: name, description: description, parameters: parameters}
}

func (t BaseTool) Name() string                       { return t.name }
func (t BaseTool) Description() string                { return t.description }
func (t BaseTool) Parameters() map[string]interface{} { return t.parameters }

// Definitions converts tools into the wire shape providers consume.
func Definitions(tools []Tool) []ai.Tool {
	defs := make([]ai.Tool, 0, len(tools))
	for _, tool := range tools {
		defs = append(defs, ai.Tool{
			Name:        tool.Name(),
			Description: tool.Description(),
			Parameters:  tool.Parameters(),
		})
	}
	return defs
}

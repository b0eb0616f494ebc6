package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBackfillToolNames(t *testing.T) {
	msgs := []Message{
		{Type: "message", Message: Body{
			Role:    RoleAssistant,
			Content: BlocksContent(Block{Type: BlockToolUse, ID: "abc", Name: "Read"}),
		}},
		{Type: "message", Message: Body{
			Role:       RoleToolResult,
			ToolCallID: "abc",
			Content:    TextContent("file contents"),
		}},
		{Type: "message", Message: Body{
			Role:       RoleToolResult,
			ToolCallID: "missing",
			Content:    TextContent("orphan result"),
		}},
	}

	BackfillToolNames(msgs)

	assert.Equal(t, "Read", msgs[1].Message.ToolName)
	assert.Empty(t, msgs[2].Message.ToolName)
}

// A result logged before its invocation still resolves: the id map is
// built from the whole transcript, not a forward scan.
func TestBackfillToolNamesResultBeforeUse(t *testing.T) {
	msgs := []Message{
		{Type: "message", Message: Body{
			Role:       RoleToolResult,
			ToolCallID: "t9",
			Content:    TextContent("early result"),
		}},
		{Type: "message", Message: Body{
			Role:    RoleAssistant,
			Content: BlocksContent(Block{Type: BlockToolUse, ID: "t9", Name: "Bash"}),
		}},
	}

	BackfillToolNames(msgs)
	assert.Equal(t, "Bash", msgs[0].Message.ToolName)
}

func TestBackfillKeepsExistingName(t *testing.T) {
	msgs := []Message{
		{Type: "message", Message: Body{
			Role:    RoleAssistant,
			Content: BlocksContent(Block{Type: BlockToolUse, ID: "x", Name: "Write"}),
		}},
		{Type: "message", Message: Body{
			Role:       RoleToolResult,
			ToolCallID: "x",
			ToolName:   "AlreadySet",
			Content:    TextContent("done"),
		}},
	}

	BackfillToolNames(msgs)
	assert.Equal(t, "AlreadySet", msgs[1].Message.ToolName)
}

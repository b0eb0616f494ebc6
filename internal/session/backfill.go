package session

// BackfillToolNames fills in the tool name on toolResult messages that
// lack one, using the tool_use blocks found anywhere in the transcript.
// Results can be logged far from their invocation, in either direction,
// so this has to be a second pass over the whole message list.
func BackfillToolNames(msgs []Message) {
	names := make(map[string]string)
	for _, m := range msgs {
		for _, b := range m.Message.Content.Blocks {
			if b.Type == BlockToolUse && b.ID != "" && b.Name != "" {
				names[b.ID] = b.Name
			}
		}
	}
	if len(names) == 0 {
		return
	}
	for i := range msgs {
		body := &msgs[i].Message
		if body.Role != RoleToolResult || body.ToolName != "" {
			continue
		}
		if name, ok := names[body.ToolCallID]; ok {
			body.ToolName = name
		}
	}
}

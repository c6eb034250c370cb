// Package provider holds helpers shared by the chat provider adapters.
package provider

import ai "github.com/spetersoncode/warden"

// DefaultMaxTokens is used when a request does not set ai.WithMaxTokens.
const DefaultMaxTokens = 4096

// SystemPrompt returns the system prompt from options, falling back to the
// concatenated content of RoleSystem messages.
func SystemPrompt(options *ai.Options, messages []ai.Message) string {
	if options != nil && options.System != "" {
		return options.System
	}
	var out string
	for _, m := range messages {
		if m.Role != ai.RoleSystem || m.Content == "" {
			continue
		}
		if out != "" {
			out += "\n\n"
		}
		out += m.Content
	}
	return out
}

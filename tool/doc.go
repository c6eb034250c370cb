// Package tool provides the tool registry used by agents and the built-in
// tools of the triage workflow.
//
// Tools pair an ai.Tool definition (name, description, JSON Schema) with a
// Handler that executes a call and returns text for the model:
//
//	registry := tool.NewRegistry().Add(
//	    tool.Confluence(tool.ConfluenceConfig{BaseURL: "https://wiki.example.com"}),
//	    tool.Splunk(tool.SplunkConfig{BaseURL: "https://splunk.example.com:8089", Token: token}),
//	    tool.Email(tool.EmailConfig{Host: "smtp.example.com", Port: 587, From: "warden@example.com"}),
//	)
//
// Handler errors are returned to the model as error results so it can
// recover; only unknown tools fail Execute itself.
package tool

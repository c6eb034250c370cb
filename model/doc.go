// Package model provides chat model constants for the supported providers.
//
// Models know their provider, which lets the client route a request to the
// right backend:
//
//	m, err := model.Parse(cfg.Model) // "claude-haiku-4-5", "gpt-5-mini", ...
//	resp, err := c.Chat(ctx, messages, ai.WithModel(m))
//
// Each catalogued model carries per-million-token pricing used for cost
// reporting at the end of a triage run.
package model

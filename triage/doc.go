// Package triage is the security triage workflow: crawl a Confluence page,
// let an analyst agent decide between a Splunk investigation and a
// notification, and run the chosen branch.
//
//	crawl -> decide -> investigate -> end
//	               \-> notify      -> end
//
// Capabilities are injected, so the same graph runs against LLM-backed
// agents in production and plain functions in tests.
package triage

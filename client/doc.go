// Package client provides a unified chat client over the supported providers.
//
// The client routes each request to the provider that owns the requested
// model, initializing provider SDK clients lazily on first use. Transient
// failures are retried according to the configured retry policy.
//
//	c := client.New(client.Config{
//	    APIKeys: client.APIKeys{
//	        Anthropic: os.Getenv("ANTHROPIC_API_KEY"),
//	        OpenAI:    os.Getenv("OPENAI_API_KEY"),
//	    },
//	    Defaults: client.Defaults{Chat: model.ClaudeHaiku45},
//	})
//
//	// Routed to OpenAI because of the model's provider.
//	resp, err := c.Chat(ctx, messages, ai.WithModel(model.GPT5Mini))
//
// A [Config.OnEvent] callback receives request and retry events; the metrics
// package uses it to count tokens and failed requests.
package client

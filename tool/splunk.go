package tool

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// SplunkLogFetcherName is the registered name of the Splunk tool.
const SplunkLogFetcherName = "splunk_log_fetcher"

// SplunkConfig configures access to the Splunk management API.
type SplunkConfig struct {
	// BaseURL is the management endpoint, e.g. https://splunk.example.com:8089.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	Token   string `mapstructure:"token" yaml:"token"`
	// Earliest bounds the search window, e.g. "-24h". Empty means Splunk's default.
	Earliest string `mapstructure:"earliest" yaml:"earliest"`
	// MaxEvents caps the number of events returned to the model. Default is 50.
	MaxEvents int `mapstructure:"max_events" yaml:"max_events"`
}

type splunkArgs struct {
	Query string `json:"query" jsonschema:"description=Splunk search query in SPL"`
}

// splunkExportLine is one line of the newline-delimited export output.
type splunkExportLine struct {
	Preview bool           `json:"preview"`
	Result  map[string]any `json:"result"`
}

// Splunk returns the splunk_log_fetcher tool. It runs a blocking export search
// and returns the raw text of matching events, one per line.
func Splunk(cfg SplunkConfig, opts ...HTTPOption) Registration {
	hc := applyHTTPOpts(opts)
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = 50
	}
	return Func(SplunkLogFetcherName,
		"Fetch logs from Splunk with a search query",
		func(ctx context.Context, args splunkArgs) (string, error) {
			if cfg.BaseURL == "" {
				return "", fmt.Errorf("splunk: no base URL configured")
			}
			query := strings.TrimSpace(args.Query)
			if query == "" {
				return "", fmt.Errorf("splunk: query is required")
			}
			return searchSplunk(ctx, hc, cfg, query)
		})
}

// deniedCommands are SPL commands that write, send or reach outside the
// indexes. They are refused anywhere in the pipeline.
var deniedCommands = map[string]bool{
	"collect": true, "dbxoutput": true, "dbxquery": true, "delete": true,
	"map": true, "mcollect": true, "meventcollect": true, "outputcsv": true,
	"outputlookup": true, "rest": true, "run": true, "script": true,
	"sendalert": true, "sendemail": true, "tscollect": true,
}

// checkQuery forces the query to start with the search command and rejects
// denied commands in later pipeline stages. It returns the query to run.
func checkQuery(query string) (string, error) {
	query = strings.TrimSpace(query)
	if strings.HasPrefix(query, "|") {
		return "", fmt.Errorf("splunk: query must be a search, not a generating command")
	}
	if !strings.HasPrefix(strings.ToLower(query), "search ") {
		query = "search " + query
	}
	for _, stage := range strings.Split(query, "|")[1:] {
		fields := strings.Fields(stage)
		if len(fields) > 0 && deniedCommands[strings.ToLower(fields[0])] {
			return "", fmt.Errorf("splunk: command %q is not allowed", fields[0])
		}
	}
	return query, nil
}

func searchSplunk(ctx context.Context, hc *httpConfig, cfg SplunkConfig, query string) (string, error) {
	query, err := checkQuery(query)
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("search", query)
	form.Set("output_mode", "json")
	if cfg.Earliest != "" {
		form.Set("earliest_time", cfg.Earliest)
	}

	endpoint := strings.TrimRight(cfg.BaseURL, "/") + "/services/search/jobs/export"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Token)
	}

	body, err := hc.do("splunk", req)
	if err != nil {
		return "", err
	}

	var events []string
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), int(hc.maxResponseSize))
	for scanner.Scan() && len(events) < cfg.MaxEvents {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var l splunkExportLine
		if err := json.Unmarshal(line, &l); err != nil {
			return "", fmt.Errorf("splunk: decode result: %w", err)
		}
		if l.Preview || l.Result == nil {
			continue
		}
		if raw, ok := l.Result["_raw"].(string); ok {
			events = append(events, raw)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}

	if len(events) == 0 {
		return "no events found", nil
	}
	return strings.Join(events, "\n"), nil
}

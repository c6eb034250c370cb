package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ConfluenceCrawlerName is the registered name of the Confluence tool.
const ConfluenceCrawlerName = "confluence_crawler"

// ConfluenceConfig configures access to a Confluence instance.
type ConfluenceConfig struct {
	// BaseURL is the wiki root, e.g. https://wiki.example.com.
	BaseURL  string `mapstructure:"base_url" yaml:"base_url"`
	Username string `mapstructure:"username" yaml:"username"`
	// Token is an API token, sent with Username as basic auth or alone as a bearer token.
	Token string `mapstructure:"token" yaml:"token"`
	Space string `mapstructure:"space" yaml:"space"`
}

type confluenceArgs struct {
	URL string `json:"url" jsonschema:"description=Confluence page URL or page reference (content ID or title)"`
}

type confluencePage struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  struct {
		Storage struct {
			Value string `json:"value"`
		} `json:"storage"`
	} `json:"body"`
}

var (
	stripPolicy = bluemonday.StrictPolicy()
	blankLines  = regexp.MustCompile(`\n{3,}`)
	blockTags   = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|table|ul|ol|pre|blockquote)>|<br\s*/?>`)
	numericID   = regexp.MustCompile(`^\d+$`)
)

// Confluence returns the confluence_crawler tool. It accepts a full page URL,
// a numeric content ID, or a page title, and returns the page as plain text.
//
// Full URLs are fetched only from allowed hosts, which default to the host
// of cfg.BaseURL. Credentials are sent only to the BaseURL origin.
func Confluence(cfg ConfluenceConfig, opts ...HTTPOption) Registration {
	hc := applyHTTPOpts(opts)
	if len(hc.allowedHosts) == 0 {
		if u, err := url.Parse(cfg.BaseURL); err == nil && u.Hostname() != "" {
			hc.allowedHosts = []string{u.Hostname()}
		}
	}
	return Func(ConfluenceCrawlerName,
		"Crawl a Confluence page and return its text content",
		func(ctx context.Context, args confluenceArgs) (string, error) {
			ref := strings.TrimSpace(args.URL)
			if ref == "" {
				return "", fmt.Errorf("confluence: url is required")
			}
			return crawlConfluence(ctx, hc, cfg, ref)
		})
}

func crawlConfluence(ctx context.Context, hc *httpConfig, cfg ConfluenceConfig, ref string) (string, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		if len(hc.allowedHosts) == 0 {
			return "", fmt.Errorf("confluence: no base URL or allowed hosts configured to fetch %q", ref)
		}
		if err := hc.checkHost(ref); err != nil {
			return "", err
		}
		body, err := confluenceGet(ctx, hc, cfg, ref)
		if err != nil {
			return "", err
		}
		return HTMLToText(string(body)), nil
	}

	if cfg.BaseURL == "" {
		return "", fmt.Errorf("confluence: no base URL configured to resolve %q", ref)
	}
	base := strings.TrimRight(cfg.BaseURL, "/")

	var endpoint string
	if numericID.MatchString(ref) {
		endpoint = fmt.Sprintf("%s/rest/api/content/%s?expand=body.storage", base, url.PathEscape(ref))
		body, err := confluenceGet(ctx, hc, cfg, endpoint)
		if err != nil {
			return "", err
		}
		var page confluencePage
		if err := json.Unmarshal(body, &page); err != nil {
			return "", fmt.Errorf("confluence: decode page: %w", err)
		}
		return renderPage(page), nil
	}

	q := url.Values{}
	q.Set("title", ref)
	q.Set("expand", "body.storage")
	if cfg.Space != "" {
		q.Set("spaceKey", cfg.Space)
	}
	endpoint = base + "/rest/api/content?" + q.Encode()
	body, err := confluenceGet(ctx, hc, cfg, endpoint)
	if err != nil {
		return "", err
	}
	var result struct {
		Results []confluencePage `json:"results"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("confluence: decode search: %w", err)
	}
	if len(result.Results) == 0 {
		return "", fmt.Errorf("confluence: no page titled %q", ref)
	}
	return renderPage(result.Results[0]), nil
}

func confluenceGet(ctx context.Context, hc *httpConfig, cfg ConfluenceConfig, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	switch {
	case !sameOrigin(cfg.BaseURL, endpoint):
		// Credentials never leave the wiki.
	case cfg.Username != "" && cfg.Token != "":
		req.SetBasicAuth(cfg.Username, cfg.Token)
	case cfg.Token != "":
		req.Header.Set("Authorization", "Bearer "+cfg.Token)
	}
	req.Header.Set("Accept", "application/json, text/html")
	return hc.do("confluence", req)
}

// sameOrigin reports whether endpoint has the scheme and host of base.
func sameOrigin(base, endpoint string) bool {
	b, err := url.Parse(base)
	if err != nil || b.Host == "" {
		return false
	}
	e, err := url.Parse(endpoint)
	if err != nil {
		return false
	}
	return strings.EqualFold(b.Scheme, e.Scheme) && strings.EqualFold(b.Host, e.Host)
}

func renderPage(p confluencePage) string {
	text := HTMLToText(p.Body.Storage.Value)
	if p.Title == "" {
		return text
	}
	return "# " + p.Title + "\n\n" + text
}

// HTMLToText strips markup from a page body, keeping block boundaries as newlines.
func HTMLToText(s string) string {
	s = blockTags.ReplaceAllString(s, "$0\n")
	s = html.UnescapeString(stripPolicy.Sanitize(s))
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	s = blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(s)
}

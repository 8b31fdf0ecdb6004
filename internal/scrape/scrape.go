// Package scrape fetches the road-authority page for the monitored pass and
// extracts its open/closed announcement from unstructured HTML.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"paso-monitor-server/internal/models"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// keywordRe matches text that begins with one of the recognized status
// keywords, capturing the keyword and the free-text remainder.
var keywordRe = regexp.MustCompile(`(?i)^(Abierto|Cerrado|Habilitado)\s*(.*)$`)

type Client struct {
	httpc *http.Client
	url   string
}

func New(url string, timeout time.Duration) *Client {
	return &Client{
		httpc: &http.Client{Timeout: timeout},
		url:   url,
	}
}

func (c *Client) URL() string { return c.url }

// FetchStatus downloads the source page and extracts the status phrase.
// A returned error always means the page could not be fetched; a page that
// fetched fine but carries no recognizable keyword yields StatusUnknown.
func (c *Client) FetchStatus(ctx context.Context) (status, detail string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", "", fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("fetch %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return "", "", fmt.Errorf("fetch %s: unexpected status %d", c.url, resp.StatusCode)
	}

	status, detail = ParseStatus(resp.Body)
	return status, detail, nil
}

// ParseStatus walks the document's text nodes depth-first and returns the
// keyword and remainder of the first one, in document order, starting with a
// recognized status word. Empty or malformed markup is a miss, not an error.
func ParseStatus(r io.Reader) (status, detail string) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return models.StatusUnknown, ""
	}

	var match []string
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if m := keywordRe.FindStringSubmatch(text); m != nil {
					match = m
					return true
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if walk(child) {
				return true
			}
		}
		return false
	}
	for _, node := range doc.Nodes {
		if walk(node) {
			break
		}
	}

	if match == nil {
		return models.StatusUnknown, ""
	}
	return match[1], strings.TrimSpace(match[2])
}

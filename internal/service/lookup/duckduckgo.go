package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"
)

// DuckDuckGo queries the DuckDuckGo Instant Answer API.
type DuckDuckGo struct {
	endpoint string
	timeout  time.Duration
	client   *fasthttp.Client
}

// NewDuckDuckGo creates a searcher for endpoint (normally https://api.duckduckgo.com/).
func NewDuckDuckGo(endpoint string, timeout time.Duration) *DuckDuckGo {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DuckDuckGo{
		endpoint: endpoint,
		timeout:  timeout,
		client: &fasthttp.Client{
			Name:                "bloomspace-lookup",
			MaxResponseBodySize: 2 << 20,
		},
	}
}

type instantAnswer struct {
	Heading       string  `json:"Heading"`
	AbstractText  string  `json:"AbstractText"`
	RelatedTopics []topic `json:"RelatedTopics"`
}

// topic is either a leaf (Text set) or a named group of nested topics.
type topic struct {
	Text   string  `json:"Text"`
	Name   string  `json:"Name"`
	Topics []topic `json:"Topics"`
}

// Search issues one GET bounded by the configured timeout and the ctx deadline.
func (d *DuckDuckGo) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	timeout := d.timeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, context.DeadlineExceeded
		}
		timeout = min(timeout, remaining)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(d.endpoint)
	req.Header.SetMethod(fasthttp.MethodGet)
	args := req.URI().QueryArgs()
	args.Add("q", query)
	args.Add("format", "json")
	args.Add("no_html", "1")
	args.Add("skip_disambig", "1")

	if err := d.client.DoTimeout(req, resp, timeout); err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) {
			return nil, fmt.Errorf("lookup timed out after %s: %w", timeout, err)
		}
		return nil, fmt.Errorf("lookup request failed: %w", err)
	}
	if code := resp.StatusCode(); code != fasthttp.StatusOK {
		return nil, fmt.Errorf("lookup returned status %d", code)
	}

	var answer instantAnswer
	if err := sonic.Unmarshal(resp.Body(), &answer); err != nil {
		return nil, fmt.Errorf("failed to decode lookup response: %w", err)
	}
	return answer.results(limit), nil
}

func (a instantAnswer) results(limit int) []Result {
	var out []Result
	if body := strings.TrimSpace(a.AbstractText); body != "" {
		out = append(out, Result{Title: strings.TrimSpace(a.Heading), Body: body})
	}
	for _, t := range flatten(a.RelatedTopics) {
		if limit > 0 && len(out) >= limit {
			break
		}
		title, body, found := strings.Cut(t.Text, " - ")
		if !found {
			body = title
		}
		out = append(out, Result{Title: strings.TrimSpace(title), Body: strings.TrimSpace(body)})
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func flatten(topics []topic) []topic {
	var out []topic
	for _, t := range topics {
		if len(t.Topics) > 0 {
			out = append(out, flatten(t.Topics)...)
			continue
		}
		if strings.TrimSpace(t.Text) != "" {
			out = append(out, t)
		}
	}
	return out
}

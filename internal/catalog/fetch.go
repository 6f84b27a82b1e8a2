package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

// Fetcher downloads a seed document from a remote catalog.
type Fetcher struct {
	client *fasthttp.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &fasthttp.Client{
			MaxConnsPerHost:     4,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/yaml")

	deadline, ok := ctx.Deadline()
	if ok {
		if err := f.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := f.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("catalog fetch failed: %d", resp.StatusCode())
	}

	// resp is released on return, so the body must be copied out.
	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, nil
}

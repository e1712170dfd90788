package firecrawl

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pollClient scripts GetCrawlStatus for polling tests.
type pollClient struct {
	statuses []string
	calls    int
}

func (p *pollClient) Crawl(context.Context, CrawlRequest) (*CrawlResponse, error) {
	return nil, eris.New("not used")
}

func (p *pollClient) Scrape(context.Context, ScrapeRequest) (*ScrapeResponse, error) {
	return nil, eris.New("not used")
}

func (p *pollClient) Extract(context.Context, ExtractRequest) (*ExtractResponse, error) {
	return nil, eris.New("not used")
}

func (p *pollClient) GetCrawlStatus(context.Context, string) (*CrawlStatusResponse, error) {
	status := p.statuses[p.calls]
	if p.calls < len(p.statuses)-1 {
		p.calls++
	}
	return &CrawlStatusResponse{Status: status, Data: []PageData{{URL: "https://a.com/"}}}, nil
}

func TestPollCrawlWaitsForCompletion(t *testing.T) {
	client := &pollClient{statuses: []string{"scraping", "scraping", "completed"}}

	status, err := PollCrawl(context.Background(), client, "id",
		WithPollInterval(time.Millisecond),
		WithPollCap(2*time.Millisecond),
	)

	require.NoError(t, err)
	assert.Equal(t, "completed", status.Status)
	assert.Equal(t, 2, client.calls)
}

func TestPollCrawlFailedStatus(t *testing.T) {
	client := &pollClient{statuses: []string{"failed"}}

	_, err := PollCrawl(context.Background(), client, "id", WithPollInterval(time.Millisecond))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed")
}

func TestPollCrawlTimeout(t *testing.T) {
	client := &pollClient{statuses: []string{"scraping"}}

	_, err := PollCrawl(context.Background(), client, "id",
		WithPollInterval(time.Millisecond),
		WithPollTimeout(10*time.Millisecond),
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPollCrawlRespectsParentDeadline(t *testing.T) {
	client := &pollClient{statuses: []string{"scraping"}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := PollCrawl(ctx, client, "id", WithPollInterval(time.Millisecond))
	require.Error(t, err)
}

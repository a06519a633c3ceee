package watcher

import (
	"bytes"
	"context"
	"testing"

	"github.com/samvad-hq/steamwatch/pkg/httpclient"
	"github.com/samvad-hq/steamwatch/pkg/watchlist"
)

// stubHTTPResponse implements httpclient.Response.
type stubHTTPResponse struct {
	body       []byte
	statusCode int
}

func (s stubHTTPResponse) Body() []byte    { return s.body }
func (s stubHTTPResponse) StatusCode() int { return s.statusCode }

// stubHTTPClient returns a single response and remembers the requested URL.
type stubHTTPClient struct {
	resp httpclient.Response
	url  *string
}

func (s stubHTTPClient) Do(_ context.Context, req httpclient.Request) (httpclient.Response, error) {
	if s.url != nil {
		*s.url = req.URL
	}
	return s.resp, nil
}

const profilePage = `
<html>
  <head>
    <title>Steam Community :: gaben</title>
    <meta property="og:title" content="Steam Community :: gaben">
    <meta property="og:description" content=" Welcome to Steam ">
    <meta property="og:image" content="https://avatars.example/gaben.jpg">
  </head>
</html>`

func TestParseMetaPrefersOGTags(t *testing.T) {
	meta, err := parseMeta([]byte(profilePage))
	if err != nil {
		t.Fatalf("parseMeta: %v", err)
	}
	if meta.Title != "Steam Community :: gaben" || meta.Description != "Welcome to Steam" || meta.ImageURL != "https://avatars.example/gaben.jpg" {
		t.Fatalf("unexpected meta %#v", meta)
	}
}

func TestParseMetaFallsBackToTitleAndDescription(t *testing.T) {
	meta, err := parseMeta([]byte(`<html><head><title> Fallback </title><meta name="description" content="desc"></head></html>`))
	if err != nil {
		t.Fatalf("parseMeta: %v", err)
	}
	if meta.Title != "Fallback" || meta.Description != "desc" || meta.ImageURL != "" {
		t.Fatalf("unexpected meta %#v", meta)
	}
}

func TestPageEnricherAddsPageMeta(t *testing.T) {
	var requested string
	enricher := NewPageEnricher(stubHTTPClient{
		resp: stubHTTPResponse{body: []byte(profilePage), statusCode: 200},
		url:  &requested,
	})
	profile := map[string]any{"steamid": "765", "profileurl": "https://steamcommunity.com/id/gaben/"}

	got, err := enricher.Enrich(context.Background(), watchlist.Target{ID: "p", Kind: watchlist.KindProfile}, profile)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if requested != "https://steamcommunity.com/id/gaben/" {
		t.Fatalf("unexpected page url %q", requested)
	}
	meta, ok := got.(map[string]any)[pageMetaField].(map[string]any)
	if !ok || meta["description"] != "Welcome to Steam" {
		t.Fatalf("expected page_meta, got %#v", got)
	}
	if _, mutated := profile[pageMetaField]; mutated {
		t.Fatal("input snapshot must not be modified")
	}
}

func TestPageEnricherLimitsBodyAndRejectsStatus(t *testing.T) {
	body := bytes.Repeat([]byte("a"), maxHTMLBodyBytes+10)
	enricher := NewPageEnricher(stubHTTPClient{resp: stubHTTPResponse{body: body, statusCode: 200}})
	profile := map[string]any{"profileurl": "https://steamcommunity.com/id/x/"}

	got, err := enricher.Enrich(context.Background(), watchlist.Target{Kind: watchlist.KindProfile}, profile)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if meta := got.(map[string]any)[pageMetaField].(map[string]any); meta["title"] != "" {
		t.Fatalf("expected empty title for body without metadata, got %#v", meta)
	}

	enricher = NewPageEnricher(stubHTTPClient{resp: stubHTTPResponse{statusCode: 404}})
	if _, err := enricher.Enrich(context.Background(), watchlist.Target{Kind: watchlist.KindProfile}, profile); err == nil {
		t.Fatal("expected error on 404 profile page")
	}
}

func TestPageEnricherSkipsSnapshotsWithoutURL(t *testing.T) {
	enricher := NewPageEnricher(stubHTTPClient{resp: stubHTTPResponse{statusCode: 500}})
	snap := map[string]any{"steamid": "1"}
	got, err := enricher.Enrich(context.Background(), watchlist.Target{Kind: watchlist.KindProfile}, snap)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if len(got.(map[string]any)) != 1 {
		t.Fatalf("expected unchanged snapshot, got %#v", got)
	}
}

package watcher

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samvad-hq/steamwatch/pkg/httpclient"
	"github.com/samvad-hq/steamwatch/pkg/watchlist"
)

const (
	maxHTMLBodyBytes = 1 << 20 // 1 MiB
	profileURLField  = "profileurl"
	pageMetaField    = "page_meta"
)

// PageEnricher fetches a player's community profile page and attaches its
// OpenGraph summary under "page_meta".
type PageEnricher struct {
	client httpclient.Client
}

// NewPageEnricher constructs an enricher using client for page fetches.
func NewPageEnricher(client httpclient.Client) *PageEnricher {
	return &PageEnricher{client: client}
}

// Enrich returns a copy of a profile snapshot with page_meta set. Snapshots
// without a profileurl are returned unchanged.
func (p *PageEnricher) Enrich(ctx context.Context, t watchlist.Target, snapshot any) (any, error) {
	if p == nil || p.client == nil || t.Kind != watchlist.KindProfile {
		return snapshot, nil
	}
	profile, ok := snapshot.(map[string]any)
	if !ok {
		return snapshot, nil
	}
	pageURL, _ := profile[profileURLField].(string)
	if strings.TrimSpace(pageURL) == "" {
		return snapshot, nil
	}

	resp, err := p.client.Do(ctx, httpclient.Request{Method: http.MethodGet, URL: pageURL})
	if err != nil {
		return snapshot, fmt.Errorf("fetch profile page: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return snapshot, fmt.Errorf("profile page returned status %d", resp.StatusCode())
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}
	meta, err := parseMeta(body)
	if err != nil {
		return snapshot, err
	}

	out := make(map[string]any, len(profile)+1)
	for k, v := range profile {
		out[k] = v
	}
	out[pageMetaField] = map[string]any{
		"title":       meta.Title,
		"description": meta.Description,
		"image_url":   meta.ImageURL,
	}
	return out, nil
}

type pageMeta struct {
	Title       string
	Description string
	ImageURL    string
}

func parseMeta(body []byte) (pageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return pageMeta{}, fmt.Errorf("parse html: %w", err)
	}

	attr := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	return pageMeta{
		Title: firstNonEmpty(
			attr(`meta[property="og:title"]`),
			doc.Find("title").First().Text(),
		),
		Description: firstNonEmpty(
			attr(`meta[property="og:description"]`),
			attr(`meta[name="description"]`),
		),
		ImageURL: attr(`meta[property="og:image"]`),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

package publishers

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: http2
    type: HTTP
    enabled: true
    http:
      url: " https://example.com/2 "
  - id: queue
    type: sqs
    sqs:
      uri: https://sqs.example/queue
      region: eu-west-1
      access_key_id: AKIA
      secret_access_key: shh
  - id: topic
    type: sns
    sns:
      topic_arn: arn:aws:sns:eu-west-1:1:steam
      region: eu-west-1
  - id: gcp
    type: gcp_pubsub
    enabled: false
    pubsub:
      project_id: p
      topic: t
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 3 || enabled[0].ID != "http2" {
		t.Fatalf("expected http2, queue, topic enabled, got %#v", enabled)
	}
	h, _ := reg.ByID("http2")
	if h.HTTP.URL != "https://example.com/2" || h.HTTP.Method != "POST" || h.HTTP.TimeoutSeconds != 5 {
		t.Fatalf("unexpected sanitized http config %#v", h.HTTP)
	}
	q, _ := reg.ByID("queue")
	if q.SQS.AccessKeyID != "AKIA" || q.SQS.SecretAccessKey != "shh" {
		t.Fatalf("inline credentials not decoded: %#v", q.SQS)
	}
}

func TestValidatePublisherConfig(t *testing.T) {
	cases := []PublisherConfig{
		{ID: "h1", Type: TypeHTTP},
		{ID: "", Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "u"}},
		{ID: "q", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "u"}},
		{ID: "q", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "u", Region: "r", AWSCredentials: AWSCredentials{AccessKeyID: "a"}}},
		{ID: "s", Type: TypeSNS, SNS: &SNSPublisherConfig{Region: "r"}},
		{ID: "g", Type: TypeGCPPubSub, PubSub: &GCPPubSubConfig{ProjectID: "p"}},
		{ID: "n", Type: ""},
	}
	for _, cfg := range cases {
		if err := validatePublisherConfig(cfg); err == nil {
			t.Errorf("expected validation error for %#v", cfg)
		}
	}
}

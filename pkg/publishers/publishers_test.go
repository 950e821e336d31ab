package publishers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/samvad-hq/mercari-items-client/internal/domain"
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
    type: http
    enabled: true
    http:
      url: https://example.com/2
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "http2" {
		t.Fatalf("expected only http2 enabled, got %#v", enabled)
	}
	if enabled[0].HTTP.Method != "POST" || enabled[0].HTTP.TimeoutSeconds != 5 {
		t.Fatalf("http defaults not applied: %#v", enabled[0].HTTP)
	}
}

func TestLoadRegistryAWSAndPubSubBlocks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: queue
    type: sqs
    sqs:
      uri: " https://sqs.local/000/items "
      region: ap-northeast-1
      endpoint: http://localhost:4566
  - id: topic
    type: SNS
    sns:
      topic_arn: arn:aws:sns:ap-northeast-1:000:items
      region: ap-northeast-1
  - id: gcp
    type: pubsub
    pubsub:
      project_id: demo
      topic: items
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	queue, ok := reg.ByID("queue")
	if !ok || queue.SQS.QueueURL != "https://sqs.local/000/items" || queue.SQS.Endpoint != "http://localhost:4566" {
		t.Fatalf("unexpected sqs config %#v", queue.SQS)
	}
	topic, ok := reg.ByID("topic")
	if !ok || topic.Type != TypeSNS || topic.SNS.Region != "ap-northeast-1" {
		t.Fatalf("unexpected sns config %#v", topic)
	}
	gcp, ok := reg.ByID("gcp")
	if !ok || gcp.PubSub.Topic != "items" {
		t.Fatalf("unexpected pubsub config %#v", gcp.PubSub)
	}
}

func TestValidatePublisherConfigRejectsMissingBlocks(t *testing.T) {
	cases := []PublisherConfig{
		{ID: "h1", Type: TypeHTTP},
		{ID: "q1", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "u"}},
		{ID: "s1", Type: TypeSNS, SNS: &SNSPublisherConfig{}},
		{ID: "p1", Type: TypePubSub, PubSub: &PubSubPublisherConfig{ProjectID: "demo"}},
		{Type: TypeHTTP},
	}
	for _, cfg := range cases {
		if err := validatePublisherConfig(cfg); err == nil {
			t.Fatalf("expected validation error for %#v", cfg)
		}
	}
}

func TestLoadRegistryNormalizesCategories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: books-hook
    type: http
    categories: [" Books ", "books", "", "Comics"]
    http:
      url: https://example.com/books
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	cfg, _ := reg.ByID("books-hook")
	if diff := cmp.Diff([]string{"books", "comics"}, cfg.Categories); diff != "" {
		t.Fatalf("categories mismatch (-want +got):\n%s", diff)
	}
}

func TestPublisherConfigAccepts(t *testing.T) {
	all := PublisherConfig{ID: "all"}
	books := PublisherConfig{ID: "books", Categories: []string{"books"}}

	cases := []struct {
		cfg  PublisherConfig
		item domain.Item
		want bool
	}{
		{all, domain.Item{Category: "Anything"}, true},
		{all, domain.Item{}, true},
		{books, domain.Item{Category: "Books"}, true},
		{books, domain.Item{Category: "Toys"}, false},
		{books, domain.Item{}, false},
	}
	for _, tc := range cases {
		if got := tc.cfg.Accepts(tc.item); got != tc.want {
			t.Fatalf("%s.Accepts(%q) = %v, want %v", tc.cfg.ID, tc.item.Category, got, tc.want)
		}
	}
}

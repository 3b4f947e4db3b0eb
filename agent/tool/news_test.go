package tool

import (
	"strings"
	"testing"
)

func TestSearchNewsByTopicKey(t *testing.T) {
	t.Parallel()

	got := SearchNews("Tech")
	if got.Status != "success" {
		t.Fatalf("unexpected status: %s", got.Status)
	}
	if len(got.Articles) != 3 {
		t.Fatalf("expected 3 technology articles, got %d", len(got.Articles))
	}
	if got.Articles[0].Title != "New AI Breakthrough in Robotics" {
		t.Fatalf("unexpected first article: %s", got.Articles[0].Title)
	}
}

func TestSearchNewsByTitle(t *testing.T) {
	t.Parallel()

	got := SearchNews("vaccine")
	if got.Status != "success" {
		t.Fatalf("unexpected status: %s", got.Status)
	}
	if len(got.Articles) != 3 || got.Articles[0].Source != "Health Journal" {
		t.Fatalf("expected the health set, got %#v", got.Articles)
	}
}

func TestSearchNewsUnknownTopic(t *testing.T) {
	t.Parallel()

	got := SearchNews("sports")
	if got.Status != "error" {
		t.Fatalf("unexpected status: %s", got.Status)
	}
	if len(got.Articles) != 0 {
		t.Fatalf("expected no articles, got %d", len(got.Articles))
	}
	if !strings.Contains(got.Message, "No specific news found for 'sports'") {
		t.Fatalf("unexpected message: %q", got.Message)
	}
}

package scanner

import (
	"context"
	"testing"

	"NewsRanker/internal/domain"
)

type stubScanner struct{ name string }

func (s stubScanner) Name() string { return s.name }

func (s stubScanner) Scan(context.Context, Request) ([]domain.Article, error) { return nil, nil }

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(stubScanner{name: "rss"})
	reg.Register(stubScanner{name: "newsapi"})

	if _, err := reg.Resolve("rss"); err != nil {
		t.Fatalf("resolve rss: %v", err)
	}
	if _, err := reg.Resolve("arxiv"); err == nil {
		t.Fatalf("expected error for unregistered scanner")
	}

	names := reg.Names()
	if len(names) != 2 || names[0] != "newsapi" || names[1] != "rss" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestRegistryZeroValue(t *testing.T) {
	t.Parallel()

	var reg Registry
	reg.Register(stubScanner{name: "rss"})
	if _, err := reg.Resolve("rss"); err != nil {
		t.Fatalf("resolve on zero registry: %v", err)
	}
}

package mapping

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestMergeCategoriesRejectsTargetInSources(t *testing.T) {
	t.Parallel()

	s := NewStore(nil, zerolog.Nop())

	_, err := s.MergeCategories(context.Background(), []string{"Finance", "Gambling"}, "Gambling")
	if !errors.Is(err, ErrMergeTargetInSources) {
		t.Fatalf("expected ErrMergeTargetInSources, got %v", err)
	}
}

func TestMergeCategoriesRequiresTarget(t *testing.T) {
	t.Parallel()

	s := NewStore(nil, zerolog.Nop())

	if _, err := s.MergeCategories(context.Background(), []string{"Finance"}, "  "); err == nil {
		t.Fatalf("expected error for empty target")
	}
}

func TestMergeCategoriesRequiresSources(t *testing.T) {
	t.Parallel()

	s := NewStore(nil, zerolog.Nop())

	if _, err := s.MergeCategories(context.Background(), []string{"", "  "}, "Finance"); err == nil {
		t.Fatalf("expected error for empty source list")
	}
}

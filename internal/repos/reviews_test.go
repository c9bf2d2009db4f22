package repos

import (
	"context"
	"testing"
)

func TestReviewUpsertRequiresExactlyOneSubject(t *testing.T) {
	r := &ReviewsRepo{}
	ctx := context.Background()
	movieID, bookID := int64(1), int64(2)

	if _, err := r.Upsert(ctx, 1, nil, nil, 3, "fine"); err == nil {
		t.Fatal("want error when neither movie nor book is set")
	}
	if _, err := r.Upsert(ctx, 1, &movieID, &bookID, 3, "fine"); err == nil {
		t.Fatal("want error when both movie and book are set")
	}
}

func TestReviewUpsertRejectsOutOfRangeRating(t *testing.T) {
	r := &ReviewsRepo{}
	ctx := context.Background()
	movieID := int64(1)

	for _, rating := range []float64{-0.1, 5.1} {
		if _, err := r.Upsert(ctx, 1, &movieID, nil, rating, ""); err == nil {
			t.Fatalf("want error for rating %v", rating)
		}
	}
}

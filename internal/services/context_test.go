package services_test

import (
	"context"
	"testing"

	"montage/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithStage(ctx, "place")
	ctx = services.WithRecordKey(ctx, "bass_synthetic_033-022-050")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-123" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "place" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if key, ok := services.RecordKeyFromContext(ctx); !ok || key != "bass_synthetic_033-022-050" {
		t.Fatalf("unexpected record key: %v %v", key, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	ctx = services.WithRunID(ctx, "")
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id value")
	}
}

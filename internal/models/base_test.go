package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestBaseModelBeforeCreate(t *testing.T) {
	t.Run("generates an id when unset", func(t *testing.T) {
		base := &BaseModel{}
		if err := base.BeforeCreate(nil); err != nil {
			t.Fatalf("BeforeCreate failed: %v", err)
		}
		if base.ID == uuid.Nil {
			t.Fatal("expected a generated id")
		}
	})

	t.Run("preserves a preset id", func(t *testing.T) {
		preset := uuid.New()
		base := &BaseModel{ID: preset}
		if err := base.BeforeCreate(nil); err != nil {
			t.Fatalf("BeforeCreate failed: %v", err)
		}
		if base.ID != preset {
			t.Fatalf("expected id %s preserved, got %s", preset, base.ID)
		}
	})
}

func TestIsValidFileType(t *testing.T) {
	for _, valid := range []string{"text", "image", "document", "video", "audio", "archive", "other"} {
		if !IsValidFileType(valid) {
			t.Fatalf("expected %q to be a valid file type", valid)
		}
	}
	for _, invalid := range []string{"", "binary", "TEXT", "folder"} {
		if IsValidFileType(invalid) {
			t.Fatalf("expected %q to be rejected", invalid)
		}
	}
}

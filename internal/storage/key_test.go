package storage

import "testing"

func TestObjectKey(t *testing.T) {
	if got := ObjectKey("user-1", "clip.mp4", ""); got != "user-1/clip.mp4" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := ObjectKey("user-1", "banner.png", "backgroundImage"); got != "user-1/banner.png/backgroundImage" {
		t.Fatalf("unexpected key %q", got)
	}

	// Same inputs must always map to the same object so re-uploads overwrite
	// rather than accumulate.
	first := ObjectKey("user-1", "clip.mp4", "thumbnail")
	second := ObjectKey("user-1", "clip.mp4", "thumbnail")
	if first != second {
		t.Fatalf("expected deterministic keys, got %q and %q", first, second)
	}
}

package object

import (
	"strings"
	"testing"
)

func TestUserKeyIsNamespacedAndOwned(t *testing.T) {
	key, err := UserKey("profile-images", "user-1", "me.png")
	if err != nil {
		t.Fatalf("UserKey: %v", err)
	}
	if !strings.HasPrefix(key, "profile-images/") || !strings.HasSuffix(key, "_me.png") {
		t.Fatalf("unexpected key %q", key)
	}
	if strings.Contains(key, "user-1") {
		t.Fatalf("key must not contain raw user id: %q", key)
	}
	if !OwnedBy(key, "user-1") {
		t.Fatalf("expected key owned by user-1")
	}
	if OwnedBy(key, "user-2") {
		t.Fatalf("expected key not owned by user-2")
	}
}

func TestCleanKey(t *testing.T) {
	tests := map[string]string{
		"a/b.png":       "a/b.png",
		"/a//b.png":     "a/b.png",
		"../etc/passwd": "",
		"":              "",
	}
	for in, want := range tests {
		if got := CleanKey(in); got != want {
			t.Fatalf("CleanKey(%q) = %q, want %q", in, got, want)
		}
	}
}

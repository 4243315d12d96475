package env

import "testing"

func TestGet(t *testing.T) {
	t.Setenv("CRM_TEST_VALUE", "  console ")
	if got := Get("CRM_TEST_VALUE", "json"); got != "console" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	t.Setenv("CRM_TEST_VALUE", "   ")
	if got := Get("CRM_TEST_VALUE", "json"); got != "json" {
		t.Fatalf("expected fallback for blank value, got %q", got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("CRM_TEST_FLAG", "true")
	if !Bool("CRM_TEST_FLAG", false) {
		t.Fatalf("expected true")
	}
	t.Setenv("CRM_TEST_FLAG", "maybe")
	if !Bool("CRM_TEST_FLAG", true) {
		t.Fatalf("expected fallback for malformed value")
	}
}

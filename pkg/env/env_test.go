package env

import "testing"

func TestGetFallsBack(t *testing.T) {
	t.Setenv("STOCKROOM_TEST_EMPTY", "")
	if got := Get("STOCKROOM_TEST_EMPTY", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback got %q", got)
	}
	t.Setenv("STOCKROOM_TEST_SET", "value")
	if got := Get("STOCKROOM_TEST_SET", "fallback"); got != "value" {
		t.Fatalf("expected value got %q", got)
	}
}

func TestFirstPrefersEarlierKeys(t *testing.T) {
	t.Setenv("STOCKROOM_TEST_A", " ")
	t.Setenv("STOCKROOM_TEST_B", "b")
	t.Setenv("STOCKROOM_TEST_C", "c")
	if got := First("x", "STOCKROOM_TEST_A", "STOCKROOM_TEST_B", "STOCKROOM_TEST_C"); got != "b" {
		t.Fatalf("expected b got %q", got)
	}
	if got := First("x", "STOCKROOM_TEST_MISSING"); got != "x" {
		t.Fatalf("expected fallback got %q", got)
	}
}

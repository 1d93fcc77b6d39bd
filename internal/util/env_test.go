package util

import "testing"

func TestGetEnvInt(t *testing.T) {
	t.Setenv("UTIL_TEST_INT", "42")
	if got := GetEnvInt("UTIL_TEST_INT", 7); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	if got := GetEnvInt("UTIL_TEST_INT_MISSING", 7); got != 7 {
		t.Fatalf("expected fallback 7, got %d", got)
	}
	t.Setenv("UTIL_TEST_INT", "not a number")
	if got := GetEnvInt("UTIL_TEST_INT", 7); got != 7 {
		t.Fatalf("expected fallback on parse failure, got %d", got)
	}
}

func TestGetEnvNumeric(t *testing.T) {
	t.Setenv("UTIL_TEST_NUM", "2.5")
	if got := GetEnvNumeric("UTIL_TEST_NUM", 1); got != 2.5 {
		t.Fatalf("expected 2.5, got %v", got)
	}
	if got := GetEnvNumeric("UTIL_TEST_NUM_MISSING", 3); got != 3 {
		t.Fatalf("expected fallback 3, got %v", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("UTIL_TEST_BOOL", "true")
	if !GetEnvBool("UTIL_TEST_BOOL", false) {
		t.Fatal("expected true")
	}
	t.Setenv("UTIL_TEST_BOOL", "banana")
	if GetEnvBool("UTIL_TEST_BOOL", false) {
		t.Fatal("expected fallback on parse failure")
	}
}

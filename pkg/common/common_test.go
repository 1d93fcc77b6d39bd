package common

import (
	"errors"
	"testing"
)

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in   string
		want Category
	}{
		{"cliente", CategoryClient},
		{"client-facing", CategoryClient},
		{"operador", CategoryOperator},
		{"operator-facing", CategoryOperator},
	}
	for _, tc := range cases {
		got, err := ParseCategory(tc.in)
		if err != nil {
			t.Fatalf("ParseCategory(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseCategory(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	for _, in := range []string{"", "internal", "CLIENTE", "client"} {
		_, err := ParseCategory(in)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("ParseCategory(%q) should fail with validation error, got %v", in, err)
		}
	}
}

func TestCategoryAlias(t *testing.T) {
	if CategoryClient.Alias() != "client-facing" {
		t.Fatalf("client alias: %q", CategoryClient.Alias())
	}
	if CategoryOperator.Alias() != "operator-facing" {
		t.Fatalf("operator alias: %q", CategoryOperator.Alias())
	}
}

func TestParseSourceKind(t *testing.T) {
	for _, in := range []string{"document", "free_text"} {
		if _, err := ParseSourceKind(in); err != nil {
			t.Fatalf("ParseSourceKind(%q): %v", in, err)
		}
	}
	if _, err := ParseSourceKind("pdf"); err == nil {
		t.Fatalf("ParseSourceKind should reject unknown kinds")
	}
}

package ai

import "testing"

type sample struct {
	Name string `json:"name"`
}

func TestUnmarshalFlexible_StandardJSON(t *testing.T) {
	var out sample
	if err := UnmarshalFlexible(`{"name": "refund policy"}`, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Name != "refund policy" {
		t.Fatalf("unexpected name: %q", out.Name)
	}
}

func TestUnmarshalFlexible_DoubleEncoded(t *testing.T) {
	var out sample
	if err := UnmarshalFlexible(`"{\"name\": \"escalation\"}"`, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Name != "escalation" {
		t.Fatalf("unexpected name: %q", out.Name)
	}
}

func TestUnmarshalFlexible_Repaired(t *testing.T) {
	var out sample
	if err := UnmarshalFlexible(`{name: "shipping"}`, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Name != "shipping" {
		t.Fatalf("unexpected name: %q", out.Name)
	}
}

func TestUnmarshalFlexible_DuplicateLeadingBrace(t *testing.T) {
	var out sample
	if err := UnmarshalFlexible(`{ {"name": "billing"}`, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Name != "billing" {
		t.Fatalf("unexpected name: %q", out.Name)
	}
}

func TestGenerateSchema_Proposal(t *testing.T) {
	schema := GenerateSchema(&Proposal{})
	if schema == nil {
		t.Fatalf("expected schema for Proposal")
	}
}

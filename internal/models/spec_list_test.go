package models

import (
	"encoding/json"
	"testing"
)

func TestSpecListDecodesPairArray(t *testing.T) {
	var specs SpecList
	err := json.Unmarshal([]byte(`[{"label":"Dimensions","value":"30x20x10"},{"label":"Matière","value":"Kraft"}]`), &specs)
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(specs) != 2 || specs[0].Label != "Dimensions" || specs[1].Value != "Kraft" {
		t.Fatalf("unexpected specs: %+v", specs)
	}
}

func TestSpecListDecodesObjectForm(t *testing.T) {
	var specs SpecList
	err := json.Unmarshal([]byte(`{"Matière":"Kraft","Dimensions":"30x20x10"}`), &specs)
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("expected 2 specs, got %+v", specs)
	}
	// Object keys come back sorted so reads are deterministic.
	if specs[0].Label != "Dimensions" || specs[1].Label != "Matière" {
		t.Fatalf("expected sorted labels, got %+v", specs)
	}
}

func TestSpecListDecodesNull(t *testing.T) {
	var specs SpecList
	if err := json.Unmarshal([]byte(`null`), &specs); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if specs != nil {
		t.Fatalf("expected nil specs, got %+v", specs)
	}
}

func TestSpecListRejectsScalar(t *testing.T) {
	var specs SpecList
	if err := json.Unmarshal([]byte(`"solid"`), &specs); err == nil {
		t.Fatal("expected error for scalar specs value")
	}
}

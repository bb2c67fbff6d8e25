package db

import (
	"encoding/json"
	"fmt"
	"testing"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestSetClausesEmptyUpdate(t *testing.T) {
	update := &EnrichmentUpdate{}
	clauses, args := update.setClauses(2)
	if len(clauses) != 0 {
		t.Errorf("Expected no clauses for empty update, got %v", clauses)
	}
	if len(args) != 0 {
		t.Errorf("Expected no args for empty update, got %v", args)
	}
}

func TestSetClausesNumbersFromStartArg(t *testing.T) {
	update := &EnrichmentUpdate{
		Website:  strPtr("https://acme.example"),
		Industry: strPtr("Logistics"),
	}

	clauses, args := update.setClauses(2)
	if len(clauses) != 2 || len(args) != 2 {
		t.Fatalf("Expected 2 clauses and 2 args, got %d and %d", len(clauses), len(args))
	}
	if clauses[0] != "website = $2" {
		t.Errorf("Expected first clause 'website = $2', got %q", clauses[0])
	}
	if clauses[1] != "industry = $3" {
		t.Errorf("Expected second clause 'industry = $3', got %q", clauses[1])
	}
	if args[0] != "https://acme.example" || args[1] != "Logistics" {
		t.Errorf("Args out of order: %v", args)
	}

	// A different start keeps clause and arg positions aligned.
	clauses, _ = update.setClauses(5)
	if clauses[0] != "website = $5" || clauses[1] != "industry = $6" {
		t.Errorf("Expected numbering from $5, got %v", clauses)
	}
}

func TestSetClausesSkipsAbsentFields(t *testing.T) {
	update := &EnrichmentUpdate{
		Description:   strPtr("Freight broker"),
		EmployeeCount: intPtr(120),
		FoundedYear:   intPtr(2009),
		Leadership:    json.RawMessage(`[{"name": "Pat"}]`),
	}

	clauses, args := update.setClauses(2)
	expected := []string{
		"description = $2",
		"employee_count = $3",
		"founded_year = $4",
		"leadership = $5",
	}
	if len(clauses) != len(expected) {
		t.Fatalf("Expected %d clauses, got %d: %v", len(expected), len(clauses), clauses)
	}
	for i, want := range expected {
		if clauses[i] != want {
			t.Errorf("Clause %d: expected %q, got %q", i, want, clauses[i])
		}
	}
	if len(args) != len(clauses) {
		t.Fatalf("Clause/arg mismatch: %d clauses, %d args", len(clauses), len(args))
	}
	if args[1] != 120 {
		t.Errorf("Expected employee_count arg 120, got %v", args[1])
	}
}

func TestSetClausesSkipsEmptyJSON(t *testing.T) {
	update := &EnrichmentUpdate{
		Website:     strPtr("https://acme.example"),
		SocialMedia: json.RawMessage{},
	}

	clauses, args := update.setClauses(2)
	if len(clauses) != 1 {
		t.Fatalf("Expected 1 clause, got %v", clauses)
	}
	if clauses[0] != "website = $2" {
		t.Errorf("Expected 'website = $2', got %q", clauses[0])
	}
	if len(args) != 1 {
		t.Errorf("Expected 1 arg, got %v", args)
	}
}

func TestSetClausesPlaceholdersMatchArgPositions(t *testing.T) {
	update := &EnrichmentUpdate{
		Website:            strPtr("https://acme.example"),
		Industry:           strPtr("Logistics"),
		Description:        strPtr("Freight broker"),
		HQLocation:         strPtr("Chicago, IL"),
		EmployeeCount:      intPtr(120),
		RevenueAnnualRange: strPtr("$10M-$50M"),
		FoundedYear:        intPtr(2009),
		SocialMedia:        json.RawMessage(`{"x": "acme"}`),
		Leadership:         json.RawMessage(`[]`),
		Products:           json.RawMessage(`[]`),
		Competitors:        json.RawMessage(`[]`),
	}

	// ApplyEnrichment prepends the partner id as $1, so each clause N
	// must reference $N+2 and its value must sit at args[N].
	clauses, args := update.setClauses(2)
	if len(clauses) != 11 {
		t.Fatalf("Expected 11 clauses, got %d", len(clauses))
	}
	for i, clause := range clauses {
		want := fmt.Sprintf("$%d", i+2)
		if !containsPlaceholder(clause, want) {
			t.Errorf("Clause %d %q does not reference %s", i, clause, want)
		}
	}
	if len(args) != len(clauses) {
		t.Errorf("Clause/arg mismatch: %d clauses, %d args", len(clauses), len(args))
	}
}

func containsPlaceholder(clause, placeholder string) bool {
	// Match "$2" but not "$20".
	suffix := " = " + placeholder
	return len(clause) >= len(suffix) && clause[len(clause)-len(suffix):] == suffix
}

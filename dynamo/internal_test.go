package dynamo

import (
	"errors"
	"testing"

	"github.com/aws/smithy-go"
)

// --- buildProjection Tests ---

func TestBuildProjection_Single(t *testing.T) {
	expr, names := buildProjection([]string{"id"})
	if expr != "#p0" {
		t.Errorf("expected '#p0', got %q", expr)
	}
	if names["#p0"] != "id" {
		t.Errorf("expected #p0 -> 'id', got %q", names["#p0"])
	}
}

func TestBuildProjection_ReservedWords(t *testing.T) {
	// "user" and "tokens" are DynamoDB reserved words; every projected
	// attribute must be aliased.
	expr, names := buildProjection([]string{"id", "user", "tokens"})
	if expr != "#p0, #p1, #p2" {
		t.Errorf("expected '#p0, #p1, #p2', got %q", expr)
	}
	if names["#p1"] != "user" {
		t.Errorf("expected #p1 -> 'user', got %q", names["#p1"])
	}
	if names["#p2"] != "tokens" {
		t.Errorf("expected #p2 -> 'tokens', got %q", names["#p2"])
	}
}

func TestApplyProjection_EmptyIsNoop(t *testing.T) {
	called := false
	applyProjection(nil, func(string, map[string]string) { called = true })
	if called {
		t.Error("expected no callback for empty projection")
	}
}

// --- joinStrings Tests ---

func TestJoinStrings(t *testing.T) {
	tests := []struct {
		name     string
		strs     []string
		sep      string
		expected string
	}{
		{"empty", []string{}, ", ", ""},
		{"single", []string{"one"}, ", ", "one"},
		{"multiple", []string{"a", "b", "c"}, ", ", "a, b, c"},
		{"set clauses", []string{"#attr0 = :val0", "#attr1 = :val1"}, ", ", "#attr0 = :val0, #attr1 = :val1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := joinStrings(tt.strs, tt.sep)
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

// --- wrap Tests ---

func TestWrap_IncludesAPIErrorCode(t *testing.T) {
	apiErr := &smithy.GenericAPIError{Code: "ProvisionedThroughputExceededException", Message: "slow down"}
	err := wrap("query", "Myblog", apiErr)

	if !errors.As(err, new(smithy.APIError)) {
		t.Fatal("expected wrapped error to remain a smithy.APIError")
	}
	want := "dynamo: query Myblog: ProvisionedThroughputExceededException: api error ProvisionedThroughputExceededException: slow down"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestWrap_PlainError(t *testing.T) {
	cause := errors.New("connection refused")
	err := wrap("get", "MyblogUsers", cause)

	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped error to unwrap to the cause")
	}
	if err.Error() != "dynamo: get MyblogUsers: connection refused" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

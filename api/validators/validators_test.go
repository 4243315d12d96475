package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/crm-backend/pkg/errors"
)

type sampleBody struct {
	Query string `json:"query" validate:"required"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"query":"{ hello }"}`))
	var body sampleBody
	if err := DecodeJSONBody(req, &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Query != "{ hello }" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestDecodeJSONBodyRejectsMissingAndUnknownFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{}`))
	err := DecodeJSONBody(req, &sampleBody{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if typed.Message() != "query is required" {
		t.Fatalf("expected json field name in message, got %q", typed.Message())
	}

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{"query":"x","extra":1}`))
	if err := DecodeJSONBody(req, &sampleBody{}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected unknown field rejection, got %v", err)
	}
}

func TestDecodeJSONBodyRejectsEmptyAndTrailingData(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(""))
	err := DecodeJSONBody(req, &sampleBody{})
	if typed := pkgerrors.As(err); typed == nil || typed.Message() != "request body is empty" {
		t.Fatalf("expected empty body error, got %v", err)
	}

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{"query":"x"}{"query":"y"}`))
	if err := DecodeJSONBody(req, &sampleBody{}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected trailing data rejection, got %v", err)
	}
}

func TestParseQueryJSON(t *testing.T) {
	req := httptest.NewRequest("GET", `/?variables=%7B%22first%22%3A2%7D`, nil)
	var vars map[string]any
	if err := ParseQueryJSON(req, "variables", &vars); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vars["first"] != float64(2) {
		t.Fatalf("unexpected vars %v", vars)
	}

	req = httptest.NewRequest("GET", `/?variables=nope`, nil)
	if err := ParseQueryJSON(req, "variables", &vars); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  AllOrders  ", 3); got != "All" {
		t.Fatalf("unexpected %q", got)
	}
	if got := SanitizeString(" x ", 0); got != "x" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestSanitizeStringDropsControlRunes(t *testing.T) {
	if got := SanitizeString("Ord\x00ers\x1b", 0); got != "Orders" {
		t.Fatalf("unexpected %q", got)
	}
	if got := SanitizeString("héllo", 2); got != "hé" {
		t.Fatalf("expected rune-safe cut, got %q", got)
	}
}

package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		expose    bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, expose: true, detailsOK: true},
		{code: CodeNotFound, status: http.StatusNotFound, expose: true},
		{code: CodeConflict, status: http.StatusConflict, expose: true},
		{code: CodeInternal, status: http.StatusInternalServerError},
		{code: CodeDependency, status: http.StatusServiceUnavailable, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.ExposeMessage != tt.expose {
			t.Fatalf("code %s expected expose %v got %v", tt.code, tt.expose, meta.ExposeMessage)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestPublicMasksInternalMessages(t *testing.T) {
	if got := New(CodeValidation, "Invalid price.").Public(); got != "Invalid price." {
		t.Fatalf("validation message should pass through, got %q", got)
	}
	if got := Wrap(CodeInternal, stdErrors.New("dial tcp"), "load orders").Public(); got != "internal server error" {
		t.Fatalf("internal message should be masked, got %q", got)
	}
	if got := New(CodeNotFound, "").Public(); got != "resource not found" {
		t.Fatalf("empty message should fall back, got %q", got)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation || base.Message() != "missing foo" {
		t.Fatalf("unexpected error %v", base)
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}
	base.WithDetails([]string{"Invalid phone format."})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Error() != "CONFLICT: ctx: boom" {
		t.Fatalf("unexpected error text %q", wrapped.Error())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeNotFound, "no entry"))
	if got := As(err); got == nil || got.Code() != CodeNotFound {
		t.Fatalf("As failed to return typed error")
	}
	if !IsCode(err, CodeNotFound) {
		t.Fatalf("IsCode should match wrapped typed error")
	}
	if IsCode(err, CodeValidation) {
		t.Fatalf("IsCode should not match a different code")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestDumpCapturesPostgresDetails(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "idx_customers_email", TableName: "customers"}
	err := Wrap(CodeConflict, fmt.Errorf("insert customer: %w", pgErr), "email taken")

	d := Dump(err)
	if d.Code != CodeConflict {
		t.Fatalf("expected conflict code, got %s", d.Code)
	}
	if d.PGCode != "23505" || d.PGConstraint != "idx_customers_email" || d.PGTable != "customers" {
		t.Fatalf("unexpected pg fields %+v", d)
	}
	if len(d.Chain) != 3 {
		t.Fatalf("expected 3 chain entries, got %d", len(d.Chain))
	}

	fields := d.Fields()
	if fields["pg_code"] != "23505" || fields["error_code"] != "CONFLICT" {
		t.Fatalf("unexpected fields %#v", fields)
	}
	if _, ok := fields["pg_detail"]; ok {
		t.Fatalf("empty values should be omitted")
	}
}

func TestDumpReadsLibPQErrors(t *testing.T) {
	err := fmt.Errorf("delete product: %w", &pq.Error{Code: "23503", Constraint: "order_products_product_id_fkey"})
	d := Dump(err)
	if d.PGCode != "23503" || d.PGConstraint != "order_products_product_id_fkey" {
		t.Fatalf("unexpected pg fields %+v", d)
	}
}

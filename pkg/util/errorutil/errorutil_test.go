package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestToDomainErrorPassthrough(t *testing.T) {
	original := NewValidationError("title is required", nil)
	mapped := ToDomainError(original)
	if mapped.Code != "VALIDATION_FAILED" || mapped.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("mapped=%+v", mapped)
	}
	if mapped.Message != "title is required" {
		t.Fatalf("message=%q", mapped.Message)
	}
}

func TestToDomainErrorNoRows(t *testing.T) {
	mapped := ToDomainError(fmt.Errorf("load ticket: %w", pgx.ErrNoRows))
	if mapped.Code != "NOT_FOUND" || mapped.HTTPStatus != http.StatusNotFound {
		t.Fatalf("mapped=%+v", mapped)
	}
}

func TestToDomainErrorUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "idx_tickets_ticket_number"}
	mapped := ToDomainError(fmt.Errorf("insert ticket: %w", pgErr))
	if mapped.Code != "CONFLICT" || mapped.HTTPStatus != http.StatusConflict {
		t.Fatalf("mapped=%+v", mapped)
	}
	if mapped.Details["constraint"] != "idx_tickets_ticket_number" {
		t.Fatalf("details=%v", mapped.Details)
	}
}

func TestToDomainErrorFallback(t *testing.T) {
	cause := errors.New("connection reset")
	mapped := ToDomainError(cause)
	if mapped.Code != "INTERNAL_ERROR" || mapped.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("mapped=%+v", mapped)
	}
	if !errors.Is(mapped, cause) {
		t.Fatal("cause not preserved")
	}
}

func TestEmailDeliveryErrorCarriesProviderText(t *testing.T) {
	cause := errors.New("email provider returned 403: denied")
	err := NewEmailDeliveryError(cause)

	var de *DomainError
	if !errors.As(err, &de) {
		t.Fatalf("not a DomainError: %v", err)
	}
	if de.Code != "EMAIL_DELIVERY_FAILED" || de.HTTPStatus != http.StatusBadGateway {
		t.Fatalf("err=%+v", de)
	}
	if de.Details["provider_error"] != cause.Error() {
		t.Fatalf("details=%v", de.Details)
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause not preserved")
	}
}

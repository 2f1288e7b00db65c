package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeIdempotency, status: http.StatusConflict, publicMsg: "idempotency key reused", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
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

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	base.WithDetails(map[string]any{"field": "foo"})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeDependency, cause, "fetch entries")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Error() != "DEPENDENCY_ERROR: fetch entries: boom" {
		t.Fatalf("unexpected error string %q", wrapped.Error())
	}
}

func TestAsFindsWrappedTypedError(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeNotFound, "product not found"))
	typed := As(err)
	if typed == nil || typed.Code() != CodeNotFound {
		t.Fatalf("expected typed not found error, got %v", typed)
	}
	if !IsCode(err, CodeNotFound) {
		t.Fatal("IsCode should match wrapped code")
	}
	if IsCode(stdErrors.New("plain"), CodeNotFound) {
		t.Fatal("IsCode should not match untyped errors")
	}
}

func TestDumpChain(t *testing.T) {
	err := fmt.Errorf("load view: %w", Wrap(CodeDependency, stdErrors.New("timeout"), "fetch entries"))
	dump := Dump(err)
	if dump.Code != CodeDependency || !dump.Retryable {
		t.Fatalf("unexpected dump %+v", dump)
	}
	if len(dump.Chain) != 3 {
		t.Fatalf("expected 3 chain entries, got %d: %v", len(dump.Chain), dump.Chain)
	}
	if empty := Dump(nil); empty.TopMessage != "" || len(empty.Chain) != 0 {
		t.Fatalf("expected empty dump for nil, got %+v", empty)
	}
}

func TestHTTPStatusAndRetryable(t *testing.T) {
	if got := HTTPStatus(New(CodeNotFound, "missing")); got != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", got)
	}
	if got := HTTPStatus(stdErrors.New("plain")); got != http.StatusInternalServerError {
		t.Fatalf("expected untyped errors to map to 500, got %d", got)
	}
	if got := HTTPStatus(nil); got != http.StatusOK {
		t.Fatalf("expected nil to map to 200, got %d", got)
	}
	wrapped := fmt.Errorf("load: %w", Wrap(CodeDependency, stdErrors.New("timeout"), "fetch cms entries"))
	if !IsRetryable(wrapped) {
		t.Fatal("dependency failures should be retryable")
	}
	if IsRetryable(New(CodeValidation, "bad")) || IsRetryable(nil) {
		t.Fatal("validation failures and nil are not retryable")
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CodeValidation, "unknown field %q", "colour")
	if err.Message() != `unknown field "colour"` {
		t.Fatalf("unexpected message %q", err.Message())
	}
}

func TestDumpWalksJoinedErrors(t *testing.T) {
	joined := stdErrors.Join(New(CodeNotFound, "a"), stdErrors.New("b"))
	dump := Dump(joined)
	if len(dump.Chain) != 3 {
		t.Fatalf("expected joined branches in chain, got %v", dump.Chain)
	}
	if dump.Code != CodeNotFound {
		t.Fatalf("expected first typed branch code, got %s", dump.Code)
	}
}

func TestDumpTruncatesLongChains(t *testing.T) {
	var err error = stdErrors.New("root")
	for i := 0; i < maxChainEntries+5; i++ {
		err = fmt.Errorf("layer %d: %w", i, err)
	}
	dump := Dump(err)
	if len(dump.Chain) != maxChainEntries || !dump.Truncated {
		t.Fatalf("expected truncated chain of %d, got %d (truncated=%v)", maxChainEntries, len(dump.Chain), dump.Truncated)
	}
}

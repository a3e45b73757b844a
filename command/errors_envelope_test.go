package command

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-ils/core"
)

func isBadInput(err error) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == core.ErrorBadInput
}

func TestRenewTokenMessage_ValidateReturnsRichError(t *testing.T) {
	err := (RenewTokenMessage{}).Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryValidation {
		t.Fatalf("expected validation category, got %q", rich.Category)
	}
	if rich.TextCode != core.ErrorBadInput {
		t.Fatalf("expected %q text code, got %q", core.ErrorBadInput, rich.TextCode)
	}
}

func TestMessageTypes(t *testing.T) {
	if (RenewTokenMessage{}).Type() != "ils.command.token.renew" {
		t.Fatalf("unexpected renew type")
	}
	if (ClearCacheMessage{}).Type() != "ils.command.cache.clear" {
		t.Fatalf("unexpected clear type")
	}
	if (PurgeExpiredCacheMessage{}).Type() != "ils.command.cache.purge_expired" {
		t.Fatalf("unexpected purge type")
	}
}

func TestClearCacheCommand_NilLookupReturnsRichError(t *testing.T) {
	var cmd *ClearCacheCommand
	err := cmd.Execute(context.Background(), ClearCacheMessage{})
	if err == nil {
		t.Fatalf("expected command dependency error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryInternal {
		t.Fatalf("expected internal category, got %q", rich.Category)
	}
}

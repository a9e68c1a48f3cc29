package speck

import (
	"golang.org/x/xerrors"
)

// Errors reported by this package. Verification never reports an error;
// it only returns false.
var (
	ErrInvalidSigningKey   = xerrors.New("Invalid signing key")
	ErrInvalidVerifyingKey = xerrors.New("Invalid verifying key")
	ErrInvalidSignature    = xerrors.New("Invalid signature")
	ErrPadding             = xerrors.New("Non-zero padding bits")
	ErrUnknownParams       = xerrors.New("Unknown parameter set")
	ErrRetriesExhausted    = xerrors.New("Opening search exhausted its retries")

	// Internal failures, not visible through the top-level API.
	errOpeningTooLarge = xerrors.New("Tree opening exceeds its size bound")
	errOpeningInvalid  = xerrors.New("Invalid tree opening")
	errHiddenSet       = xerrors.New("Inconsistent hidden leaf set")
)

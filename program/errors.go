package program

import "errors"

// Code is a stable numeric category for programmatic error handling.
//
// Codes are part of the wire contract with external callers (they surface as
// structured status codes), so their values must remain stable across
// versions. Callers should branch on Code rather than matching error strings.
type Code uint32

const (
	// Configuration / admin errors.
	CodeAlreadyInitialized Code = iota
	CodeNotInitialized
	CodeNotRentExempt
	CodeMaxOraclesExceed
	CodeMaxSignersExceed

	// Authorization errors.
	CodeAccessDenied
	CodeInvalidSigner
	CodeBadOracle

	// Asset-binding errors.
	CodeBadMintAuthority
	CodeBadCollateralMint
	CodeBadDecimals
	CodeOwnerMismatch

	// Economic errors.
	CodeInsufficientFunds
	CodeNotEnoughOracles
	CodeAmountOverflow

	// Protocol errors.
	CodeInvalidInstruction
	CodeIncorrectProgramID
	CodeInvalidAccountData
	CodeNotEnoughAccountKeys
)

var codeMessages = map[Code]string{
	CodeAlreadyInitialized:   "synchronizer account already initialized",
	CodeNotInitialized:       "synchronizer account is not initialized",
	CodeNotRentExempt:        "lamport balance below rent-exempt threshold",
	CodeMaxOraclesExceed:     "exceed limit of maximum oracles",
	CodeMaxSignersExceed:     "exceed limit of maximum signers",
	CodeAccessDenied:         "access denied",
	CodeInvalidSigner:        "invalid transaction signer",
	CodeBadOracle:            "signer is not a known oracle",
	CodeBadMintAuthority:     "bad mint authority",
	CodeBadCollateralMint:    "bad collateral mint",
	CodeBadDecimals:          "bad mint decimals",
	CodeOwnerMismatch:        "token account owner mismatch",
	CodeInsufficientFunds:    "insufficient funds",
	CodeNotEnoughOracles:     "not enough oracles",
	CodeAmountOverflow:       "amount overflow",
	CodeInvalidInstruction:   "invalid instruction",
	CodeIncorrectProgramID:   "incorrect program id",
	CodeInvalidAccountData:   "invalid account data",
	CodeNotEnoughAccountKeys: "not enough account keys",
}

// Message returns the canonical human-readable message for a code.
func (c Code) Message() string {
	if m, ok := codeMessages[c]; ok {
		return m
	}
	return "unknown error"
}

// Error is the structured error returned by every fallible operation in the
// core. Message is intended for humans; do not match on it.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewError returns the canonical error for a code.
func NewError(code Code) error {
	return &Error{Code: code, Message: code.Message()}
}

// WrapError attaches a cause to the canonical error for a code.
func WrapError(code Code, cause error) error {
	if cause == nil {
		return NewError(code)
	}
	return &Error{Code: code, Message: code.Message(), Cause: cause}
}

// IsCode reports whether err is (or wraps) a *Error with the given Code.
func IsCode(err error, code Code) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}

// CodeOf returns the code of a structured error, or (0, false) for anything
// else.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return 0, false
	}
	return e.Code, true
}

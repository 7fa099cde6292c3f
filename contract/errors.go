package contract

import (
	"errors"
	"fmt"
)

// Kind groups transaction failures so callers can branch on the category
// without matching message text.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindRoleMismatch
	KindInvalidStateTransition
	KindRegistryNotInitialized
	KindInvalidArgument
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindRoleMismatch:
		return "RoleMismatch"
	case KindInvalidStateTransition:
		return "InvalidStateTransition"
	case KindRegistryNotInitialized:
		return "RegistryNotInitialized"
	case KindInvalidArgument:
		return "InvalidArgument"
	}
	return "Unknown"
}

// Code names the exact failure within a kind.
type Code string

const (
	CodeOwnerNotFound          Code = "OwnerNotFound"
	CodeOwnerRoleMismatch      Code = "OwnerRoleMismatch"
	CodeVerifierNotFound       Code = "VerifierNotFound"
	CodeVerifierRoleMismatch   Code = "VerifierRoleMismatch"
	CodePublisherNotFound      Code = "PublisherNotFound"
	CodePublisherRoleMismatch  Code = "PublisherRoleMismatch"
	CodeParticipantNotFound    Code = "ParticipantNotFound"
	CodePatentRequestNotFound  Code = "PatentRequestNotFound"
	CodeInvalidStateTransition Code = "InvalidStateTransition"
	CodeRegistryNotInitialized Code = "RegistryNotInitialized"
	CodeInvalidArgument        Code = "InvalidArgument"
)

// TransactionError is returned for every business-rule failure. Ledger and
// encoding failures are plain wrapped errors and carry no kind.
type TransactionError struct {
	Kind    Kind
	Code    Code
	Message string
}

func (e *TransactionError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any TransactionError with the same code, so the exported
// sentinels below work with errors.Is regardless of message.
func (e *TransactionError) Is(target error) bool {
	t, ok := target.(*TransactionError)
	return ok && t.Code == e.Code
}

var (
	ErrOwnerNotFound          = &TransactionError{Kind: KindNotFound, Code: CodeOwnerNotFound}
	ErrOwnerRoleMismatch      = &TransactionError{Kind: KindRoleMismatch, Code: CodeOwnerRoleMismatch}
	ErrVerifierNotFound       = &TransactionError{Kind: KindNotFound, Code: CodeVerifierNotFound}
	ErrVerifierRoleMismatch   = &TransactionError{Kind: KindRoleMismatch, Code: CodeVerifierRoleMismatch}
	ErrPublisherNotFound      = &TransactionError{Kind: KindNotFound, Code: CodePublisherNotFound}
	ErrPublisherRoleMismatch  = &TransactionError{Kind: KindRoleMismatch, Code: CodePublisherRoleMismatch}
	ErrParticipantNotFound    = &TransactionError{Kind: KindNotFound, Code: CodeParticipantNotFound}
	ErrPatentRequestNotFound  = &TransactionError{Kind: KindNotFound, Code: CodePatentRequestNotFound}
	ErrInvalidStateTransition = &TransactionError{Kind: KindInvalidStateTransition, Code: CodeInvalidStateTransition}
	ErrRegistryNotInitialized = &TransactionError{Kind: KindRegistryNotInitialized, Code: CodeRegistryNotInitialized}
	ErrInvalidArgument        = &TransactionError{Kind: KindInvalidArgument, Code: CodeInvalidArgument}
)

// newError copies the kind and code of a sentinel and attaches a message.
func newError(sentinel *TransactionError, format string, args ...interface{}) error {
	return &TransactionError{
		Kind:    sentinel.Kind,
		Code:    sentinel.Code,
		Message: fmt.Sprintf(format, args...),
	}
}

// KindOf returns the kind of the first TransactionError in err's chain, or
// KindUnknown if there is none.
func KindOf(err error) Kind {
	var te *TransactionError
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindUnknown
}

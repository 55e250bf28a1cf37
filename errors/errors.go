package errors

import "errors"

// Kind classifies every failure the occupancy and billing services report.
// Handlers map kinds to transport status codes; the services never retry.
type Kind string

const (
	KindNotFound               Kind = "NotFound"
	KindCapacityExceeded       Kind = "CapacityExceeded"
	KindDuplicateAssignment    Kind = "DuplicateAssignment"
	KindInvalidStateTransition Kind = "InvalidStateTransition"
	KindValidation             Kind = "ValidationError"
	KindConflict               Kind = "Conflict"
	KindInternal               Kind = "Internal"
)

const (
	RoomNotFound            = "Room not found"
	TenantNotFound          = "Tenant not found"
	PaymentNotFound         = "Payment not found"
	RoomAtFullCapacity      = "Room at full capacity"
	RoomNotAvailable        = "Room is not available for assignment"
	TenantAlreadyAssigned   = "Tenant already assigned"
	TenantNotAssignedToRoom = "Tenant not currently assigned to this room"
	PaymentAlreadyPaid      = "Payment already marked as paid"
	PaymentNotPaid          = "Payment is not in paid status"
	RefundExceedsAmount     = "Refund amount exceeds payment amount"
	ReportNotFound          = "Report not found"
	UsernameExist           = "Username already exists"
	InvalidCredentials      = "Invalid username or password"
	InvalidRequestFormat    = "Invalid request format"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func CapacityExceeded(message string) *Error {
	return New(KindCapacityExceeded, message)
}

func DuplicateAssignment(message string) *Error {
	return New(KindDuplicateAssignment, message)
}

func InvalidStateTransition(message string) *Error {
	return New(KindInvalidStateTransition, message)
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// KindOf extracts the kind from any error in the chain, KindInternal when the
// error carries no classification.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

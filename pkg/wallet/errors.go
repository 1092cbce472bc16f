package wallet

import "errors"

var (
	// ErrTxNotFound is returned when no bucket holds the requested id.
	ErrTxNotFound = errors.New("transaction not found")
	// ErrTxNotCancellable is returned when the transaction is past the point where the
	// core can cancel it.
	ErrTxNotCancellable = errors.New("transaction not cancellable")
	// ErrInvalidBucket is returned for a bucket name outside the four partitions.
	ErrInvalidBucket = errors.New("invalid bucket")
	// ErrInvalidValidationKind is returned for a validation kind other than tx or txo.
	ErrInvalidValidationKind = errors.New("invalid validation kind")
	// ErrValidationNotFound is returned while a validation has not completed, or after
	// its result has aged out.
	ErrValidationNotFound = errors.New("validation result not found")
	// ErrInvalidConfirmations is returned for a required confirmation count of zero.
	ErrInvalidConfirmations = errors.New("required confirmations must be positive")
)

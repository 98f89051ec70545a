package service

import "errors"

// PaymentError is the single error kind the facade exposes to the
// surrounding system. The internal distinction (chain-not-found, business
// decline, transport fault) is preserved through Unwrap so logging and the
// HTTP layer can still branch on it, but callers only need to handle one
// type.
type PaymentError struct {
	Message string
	Err     error
}

func (e *PaymentError) Error() string {
	return e.Message
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

func NewPaymentError(err error) *PaymentError {
	return &PaymentError{
		Message: err.Error(),
		Err:     err,
	}
}

func IsPaymentError(err error) (*PaymentError, bool) {
	var payErr *PaymentError
	ok := errors.As(err, &payErr)
	return payErr, ok
}

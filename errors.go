package hxmount

import (
	"errors"

	"github.com/pthm/hxmount/lib/encoding"
)

// Sentinel errors for registry and renderer operations.
var (
	ErrDuplicateRegistration = errors.New("hxmount: component already registered")
	ErrComponentNotFound     = errors.New("hxmount: component not registered")
	ErrResolverFailed        = errors.New("hxmount: component resolution failed")
	ErrRenderTargetMissing   = errors.New("hxmount: render target missing")
	ErrInstanceDestroyed     = errors.New("hxmount: instance is destroyed")
	ErrMultipleChildren      = errors.New("hxmount: component rendered multiple children")
	ErrInvalidProps          = errors.New("hxmount: invalid props")
	ErrDecryptFailed         = errors.New("hxmount: parameter decryption failed")
	ErrSignatureInvalid      = errors.New("hxmount: signature verification failed")
	ErrInvalidFormat         = errors.New("hxmount: invalid parameter format")
)

// IsDuplicate checks if err is a duplicate registration error.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateRegistration)
}

// IsNotFound checks if err is a component-not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrComponentNotFound)
}

// IsResolverFailure checks if err came from a failing resolver.
func IsResolverFailure(err error) bool {
	return errors.Is(err, ErrResolverFailed)
}

// IsDestroyed checks if err reports use of a destroyed renderer.
func IsDestroyed(err error) bool {
	return errors.Is(err, ErrInstanceDestroyed)
}

// IsDecryptionError checks if err is a decryption or signature error.
func IsDecryptionError(err error) bool {
	return errors.Is(err, ErrDecryptFailed) || errors.Is(err, ErrSignatureInvalid)
}

// IsInvalidFormat checks if err is a malformed parameter error.
func IsInvalidFormat(err error) bool {
	return errors.Is(err, ErrInvalidFormat)
}

// wrapEncodingError maps encoding package errors onto hxmount sentinels.
func wrapEncodingError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, encoding.ErrInvalidFormat) {
		return ErrInvalidFormat
	}
	if errors.Is(err, encoding.ErrSignatureInvalid) {
		return ErrSignatureInvalid
	}
	if errors.Is(err, encoding.ErrDecryptFailed) {
		return ErrDecryptFailed
	}
	return err
}

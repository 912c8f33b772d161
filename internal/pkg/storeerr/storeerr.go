// Package storeerr classifies datastore failures so services can tell
// retryable outages apart from hard errors.
package storeerr

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/go-api-accounts/internal/domain"
)

// Wrap annotates err with op. Timeouts, cancellations and network errors are
// additionally wrapped with domain.ErrTransientStore. Domain sentinels pass through.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsTransient(err) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrTransientStore, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsTransient reports whether err looks like a timeout or connection loss.
func IsTransient(err error) bool {
	if errors.Is(err, domain.ErrTransientStore) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

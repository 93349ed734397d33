package error_notificator

import "context"

type Notificator interface {
	// Notify reports an operational error to whoever runs the service.
	Notify(ctx context.Context, err error, details string) error
}

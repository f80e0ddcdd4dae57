package ports

import "context"

// Mailer delivers transactional mail. Delivery failures are the caller's to
// log; no retry contract is implied.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, link string) error
}

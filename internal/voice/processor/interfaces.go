package processor

import (
	"context"

	"tradeline-server/internal/greetings"
)

// GreetingStore looks up per-hotline greeting overrides. Implemented by
// greetings.Store; nil disables the lookup entirely.
type GreetingStore interface {
	HotlineByNumber(ctx context.Context, phoneE164 string) (greetings.Hotline, error)
}

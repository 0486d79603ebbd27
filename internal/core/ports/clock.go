package ports

import "time"

// Clock supplies the current time to handlers and sweepers.
type Clock interface {
	Now() time.Time
}

package identity

import (
	"time"

	"wayfare/cmd/identity/ids"
)

func newULID(now time.Time) (string, error) {
	return ids.NewULID(now)
}

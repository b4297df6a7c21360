package coordinator

import (
	"math/rand/v2"
	"strconv"
	"time"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// FallbackID returns a locally unique group ID for when the backend could not
// create the group: the time in base-36 milliseconds followed by six random
// base-36 characters. It never resolves against the backend.
func FallbackID(now time.Time) string {
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = base36[rand.IntN(len(base36))]
	}
	return strconv.FormatInt(now.UnixMilli(), 36) + string(suffix)
}

package kvstore

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID returns an identifier unique within the process with high
// probability: millisecond timestamp in base 36 plus a random suffix.
// The time prefix keeps ids roughly sortable by creation.
func NewID() string {
	prefix := strconv.FormatInt(time.Now().UnixMilli(), 36)
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return prefix + suffix
}

package voice

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewSessionID - session_<unix ms>_<случайный суффикс>.
// Порядок и лексикографический смысл не гарантируются.
func NewSessionID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("session_%d_%s", now.UnixMilli(), suffix)
}

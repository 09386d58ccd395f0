// apps/go-server/internal/daily/daily.go
//
// Daily mode helpers.
// Responsibilities:
//   - Canonical date keys (YYYY-MM-DD, UTC).
//   - Deterministic board-of-the-day selection from date + salt, so every
//     server instance hands out the same puzzle without coordination.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"strings"
	"time"

	"github.com/robalobadob/boggle/apps/go-server/internal/game"
)

const dateLayout = "2006-01-02"

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// NormalizeDate validates a client supplied date key. Blank means today.
func NormalizeDate(raw string, now time.Time) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DateKey(now), nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return "", game.InputMissing("Invalid date %q, want YYYY-MM-DD", raw)
	}
	return DateKey(t), nil
}

// BoardCode picks the board for a date: HMAC-SHA256(salt, date) mod boards.
func BoardCode(date, salt string, boards int) int {
	if boards <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(date))
	sum := h.Sum(nil)
	n := binary.BigEndian.Uint64(sum[:8])
	return int(n % uint64(boards))
}

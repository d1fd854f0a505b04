package message

import (
	"time"

	"mingle/internal/database"
)

// timestampGap is how long a same-sender run can go before a new timestamp is
// shown.
const timestampGap = 5 * time.Minute

// Expired reports whether an ephemeral message's payload is past its expiry at
// the given render time. Non-ephemeral messages never expire.
func Expired(m *database.Message, now time.Time) bool {
	if m.EphemeralExpiresAt == nil {
		return false
	}
	return !now.Before(*m.EphemeralExpiresAt)
}

// ShowDateSeparator reports whether a separator belongs before cur: true for
// the first message and whenever the calendar date changes.
func ShowDateSeparator(prev *database.Message, cur *database.Message) bool {
	if prev == nil {
		return true
	}
	py, pm, pd := prev.CreatedAt.Date()
	cy, cm, cd := cur.CreatedAt.Date()
	return py != cy || pm != cm || pd != cd
}

// ShowAvatar collapses same-sender runs: the avatar is shown only on the last
// message of a run.
func ShowAvatar(msgs []database.Message, i int) bool {
	if i < 0 || i >= len(msgs) {
		return false
	}
	if i == len(msgs)-1 {
		return true
	}
	return msgs[i+1].SenderID != msgs[i].SenderID
}

// ShowTimestamp reports whether cur gets its own timestamp: always for the
// first message, otherwise only after more than timestampGap of silence.
func ShowTimestamp(prev *database.Message, cur *database.Message) bool {
	if prev == nil {
		return true
	}
	return cur.CreatedAt.Sub(prev.CreatedAt) > timestampGap
}

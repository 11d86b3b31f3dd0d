package presence

import "fmt"

// PairRoom derives the delivery scope for a conversation. The pair is
// canonicalized, so PairRoom(a, b) == PairRoom(b, a) and both participants
// compute the same key. Rooms are never persisted; they are recomputed on
// demand and live only as hub membership.
func PairRoom(a, b int64) string {
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("chat_%d_%d", a, b)
}

// UserRoom is a user's personal notification channel, joined on connect and
// independent of any specific conversation.
func UserRoom(userID int64) string {
	return fmt.Sprintf("user_%d", userID)
}

package presence_test

import (
	"testing"

	"heartlink/backend/internal/presence"

	"github.com/stretchr/testify/assert"
)

func TestPairRoomIsOrderIndependent(t *testing.T) {
	pairs := [][2]int64{{5, 9}, {1, 2}, {100, 3}, {7, 7}}
	for _, p := range pairs {
		assert.Equal(t, presence.PairRoom(p[0], p[1]), presence.PairRoom(p[1], p[0]))
	}
}

func TestPairRoomFormat(t *testing.T) {
	assert.Equal(t, "chat_5_9", presence.PairRoom(9, 5))
	assert.Equal(t, "chat_5_9", presence.PairRoom(5, 9))
}

func TestUserRoomFormat(t *testing.T) {
	assert.Equal(t, "user_42", presence.UserRoom(42))
}

package automod

import (
	"fmt"
	"sync/atomic"
	"time"
)

var testMessageSeq atomic.Int64

var testEpoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// testMessage builds a message from user "u1" in guild "g1".
func testMessage(channelID, content string, at time.Time) *Message {
	return &Message{
		ID:        fmt.Sprintf("m%d", testMessageSeq.Add(1)),
		GuildID:   "g1",
		ChannelID: channelID,
		AuthorID:  "u1",
		Content:   content,
		CreatedAt: at,
	}
}

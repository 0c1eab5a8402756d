package automod

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemberStore(t *testing.T) {
	assert := assert.New(t)
	s := NewMemberStore[int]()

	s.Modify("a", testEpoch, func(v *int, found bool) {
		assert.False(found)
		*v = 1
	})
	s.Modify("a", testEpoch.Add(time.Minute), func(v *int, found bool) {
		assert.True(found)
		*v++
	})
	v, ok := s.Get("a")
	assert.True(ok)
	assert.Equal(2, v)

	s.Set("b", 7, testEpoch.Add(-time.Hour))
	assert.Equal(2, s.Len())

	assert.Equal(1, s.EvictOlderThan(testEpoch))
	_, ok = s.Get("b")
	assert.False(ok)

	s.Delete("a")
	assert.Equal(0, s.Len())
}

func TestMessageFeatures(t *testing.T) {
	assert := assert.New(t)

	msg := testMessage("c1", "HeLLo\nWörld\nÄ", testEpoch)
	assert.Equal(13, msg.Length())
	assert.Equal(5, msg.CapitalLetters())
	assert.Equal(2, msg.Newlines())
	assert.Equal("g1:u1", msg.MemberKey())
}

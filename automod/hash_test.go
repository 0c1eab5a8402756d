package automod

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

type attachmentServer struct {
	*httptest.Server
	hits atomic.Int64
}

func newAttachmentServer(t *testing.T, files map[string]string) *attachmentServer {
	t.Helper()
	srv := &attachmentServer{}
	srv.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srv.hits.Add(1)
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func digestOf(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestHasherSignatures(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	srv := newAttachmentServer(t, map[string]string{"/cat.png": "meow"})
	h := NewHasher(srv.Client(), nil)

	msg := testMessage("c1", "", testEpoch)
	msg.Embeds = []Embed{{URL: "https://youtu.be/abc"}}
	msg.Attachments = []Attachment{
		{ID: "a1", URL: srv.URL + "/cat.png", Filename: "cat.png", Size: 4},
		{ID: "a2", URL: srv.URL + "/missing.png", Filename: "missing.png", Size: 10},
		{ID: "a3", URL: srv.URL + "/empty.txt", Filename: "empty.txt", Size: 0},
		{ID: "a4", URL: srv.URL + "/huge.bin", Filename: "huge.bin", Size: MaxAttachmentSize},
	}

	sigs := h.Signatures(ctx, msg)
	assert.Equal(NewSignatureSet("https://youtu.be/abc", digestOf("meow"), "missing.png", "empty.txt", "huge.bin"), sigs)
	assert.Equal(int64(2), srv.hits.Load(), "empty and oversized attachments are not fetched")
}

func TestHasherCachesPerMessage(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	srv := newAttachmentServer(t, map[string]string{"/a": "aaa", "/b": "bbb"})
	h := NewHasher(srv.Client(), nil)

	msg := testMessage("c1", "", testEpoch)
	msg.Attachments = []Attachment{
		{ID: "1", URL: srv.URL + "/a", Filename: "a", Size: 3},
		{ID: "2", URL: srv.URL + "/b", Filename: "b", Size: 3},
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Signatures(ctx, msg)
		}()
	}
	wg.Wait()

	assert.Equal(NewSignatureSet(digestOf("aaa"), digestOf("bbb")), h.Signatures(ctx, msg))
	assert.Equal(int64(2), srv.hits.Load())

	// the same bytes under another message hash to the same signature
	other := testMessage("c2", "", testEpoch)
	other.Attachments = []Attachment{{ID: "3", URL: srv.URL + "/a", Filename: "renamed", Size: 3}}
	assert.True(h.Signatures(ctx, other).Intersects(h.Signatures(ctx, msg)))
	assert.Equal(int64(3), srv.hits.Load())
}

func TestHasherNoMedia(t *testing.T) {
	h := NewHasher(http.DefaultClient, nil)
	assert.Empty(t, h.Signatures(context.Background(), testMessage("c1", "text only", testEpoch)))
}

func TestSignatureSetIntersects(t *testing.T) {
	assert := assert.New(t)

	assert.True(NewSignatureSet("a", "b").Intersects(NewSignatureSet("b", "c", "d")))
	assert.False(NewSignatureSet("a").Intersects(NewSignatureSet("b")))
	assert.False(NewSignatureSet().Intersects(NewSignatureSet("a")))
	assert.False(SignatureSet(nil).Intersects(nil))
	assert.Equal([]string{"a", "b", "c"}, NewSignatureSet("c", "a", "b").Sorted())
}

func TestHasherIgnoresCancelledCaller(t *testing.T) {
	assert := assert.New(t)
	srv := newAttachmentServer(t, map[string]string{"/cat.png": "meow"})
	h := NewHasher(srv.Client(), nil)

	msg := testMessage("c1", "", testEpoch)
	msg.Attachments = []Attachment{{ID: "a1", URL: srv.URL + "/cat.png", Filename: "cat.png", Size: 4}}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(NewSignatureSet(digestOf("meow")), h.Signatures(cancelled, msg))

	assert.Equal(NewSignatureSet(digestOf("meow")), h.Signatures(context.Background(), msg))
	assert.Equal(int64(1), srv.hits.Load(), "the digest is cached after the first fetch")
}

package automod

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/minio/sha256-simd"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Attachments this large (or empty ones) are identified by filename instead of content.
const MaxAttachmentSize = 100 * 1024 * 1024

const (
	signatureCacheSize = 10_000
	signatureCacheTTL  = 30 * time.Minute
	hashConcurrency    = 4
	signatureTimeout   = 90 * time.Second
)

// SignatureSet is the set of embed/attachment signatures of one message.
type SignatureSet map[string]struct{}

func NewSignatureSet(sigs ...string) SignatureSet {
	s := make(SignatureSet, len(sigs))
	for _, sig := range sigs {
		s[sig] = struct{}{}
	}
	return s
}

func (s SignatureSet) Intersects(other SignatureSet) bool {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	for sig := range small {
		if _, ok := large[sig]; ok {
			return true
		}
	}
	return false
}

func (s SignatureSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for sig := range s {
		out = append(out, sig)
	}
	sort.Strings(out)
	return out
}

// Generates an HTTP client with retries on connection errors, 5xx and 429.
func RobustHTTPClient(logger *slog.Logger) *http.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.Logger = logger
	client := retryClient.StandardClient()
	client.Timeout = 60 * time.Second
	return client
}

// Hasher computes message signatures. Results are cached by message ID, so each message is
// fetched and hashed at most once while it stays in the cache.
type Hasher struct {
	Client *http.Client
	Logger *slog.Logger

	cache *expirable.LRU[string, SignatureSet]
	group singleflight.Group
}

func NewHasher(client *http.Client, logger *slog.Logger) *Hasher {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = RobustHTTPClient(logger)
	}
	return &Hasher{
		Client: client,
		Logger: logger,
		cache:  expirable.NewLRU[string, SignatureSet](signatureCacheSize, nil, signatureCacheTTL),
	}
}

// Signatures returns the embed URLs and attachment digests of msg. It never fails: an
// attachment that can't be fetched is identified by its filename.
func (h *Hasher) Signatures(ctx context.Context, msg *Message) SignatureSet {
	if msg.MediaCount() == 0 {
		return SignatureSet{}
	}
	if msg.ID == "" {
		return h.compute(ctx, msg)
	}
	if sigs, ok := h.cache.Get(msg.ID); ok {
		return sigs
	}

	v, _, _ := h.group.Do(msg.ID, func() (any, error) {
		if sigs, ok := h.cache.Get(msg.ID); ok {
			return sigs, nil
		}
		// shared by every caller joined on this key
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), signatureTimeout)
		defer cancel()
		sigs := h.compute(cctx, msg)
		// don't pin degraded results from a timed out fetch
		if cctx.Err() == nil {
			h.cache.Add(msg.ID, sigs)
		}
		return sigs, nil
	})
	return v.(SignatureSet)
}

func (h *Hasher) compute(ctx context.Context, msg *Message) SignatureSet {
	sigs := NewSignatureSet()
	for _, e := range msg.Embeds {
		sigs[e.URL] = struct{}{}
	}

	attachmentSigs := make([]string, len(msg.Attachments))
	var g errgroup.Group
	g.SetLimit(hashConcurrency)
	for i, a := range msg.Attachments {
		i, a := i, a
		g.Go(func() error {
			attachmentSigs[i] = h.attachmentSignature(ctx, a)
			return nil
		})
	}
	_ = g.Wait()

	for _, sig := range attachmentSigs {
		sigs[sig] = struct{}{}
	}
	return sigs
}

func (h *Hasher) attachmentSignature(ctx context.Context, a Attachment) string {
	if a.Size == 0 || a.Size >= MaxAttachmentSize {
		return a.Filename
	}
	digest, err := h.download(ctx, a.URL)
	if err != nil {
		h.Logger.Warn("failed to hash attachment, falling back to filename", "attachment", a.ID, "filename", a.Filename, "err", err)
		return a.Filename
	}
	return digest
}

func (h *Hasher) download(ctx context.Context, url string) (string, error) {
	start := time.Now()
	defer func() {
		attachmentDownloadDuration.Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		attachmentDownloadCount.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		attachmentDownloadCount.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to download attachment: %w", err)
	}
	defer resp.Body.Close()

	attachmentDownloadCount.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}

	hasher := sha256.New()
	if _, err := io.Copy(hasher, io.LimitReader(resp.Body, MaxAttachmentSize)); err != nil {
		return "", fmt.Errorf("failed to read attachment: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

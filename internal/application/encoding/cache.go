package encoding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/molsmarts/internal/domain/molecule"
	"github.com/turtacn/molsmarts/internal/infrastructure/chemio/smarts"
	"github.com/turtacn/molsmarts/internal/infrastructure/database/redis"
	"github.com/turtacn/molsmarts/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molsmarts/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/molsmarts/pkg/errors"
)

// Cache levels, used as the metrics label.
const (
	levelL1 = "l1"
	levelL2 = "l2"
)

// cachedEncoding is what both cache levels hold for one key.
type cachedEncoding struct {
	SMARTS       string `json:"smarts"`
	AtomCount    int    `json:"atom_count"`
	BondCount    int    `json:"bond_count"`
	Components   int    `json:"components"`
	RingClosures int    `json:"ring_closures"`
}

type loadResult struct {
	entry  cachedEncoding
	cached bool
}

// resultCache is an in-process LRU in front of the shared redis cache.
// Concurrent misses on one key run the loader once.
type resultCache struct {
	l1      *lru.Cache[string, cachedEncoding]
	l2      redis.Cache
	ttl     time.Duration
	group   singleflight.Group
	metrics *prometheus.EncoderMetrics
	logger  logging.Logger
}

func newResultCache(size int, l2 redis.Cache, ttl time.Duration, metrics *prometheus.EncoderMetrics, logger logging.Logger) (*resultCache, error) {
	if size <= 0 {
		size = defaultL1Size
	}
	l1, err := lru.New[string, cachedEncoding](size)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create result cache")
	}
	return &resultCache{l1: l1, l2: l2, ttl: ttl, metrics: metrics, logger: logger}, nil
}

// load returns the entry for key, calling fn only when neither level has it.
// The flag is false only for the caller whose fn produced the entry.
func (c *resultCache) load(ctx context.Context, key string, fn func() (cachedEncoding, error)) (cachedEncoding, bool, error) {
	if e, ok := c.l1.Get(key); ok {
		c.metrics.RecordCacheAccess(levelL1, true)
		return e, true, nil
	}
	c.metrics.RecordCacheAccess(levelL1, false)

	ran := false
	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		ran = true
		if e, ok := c.fromL2(ctx, key); ok {
			c.l1.Add(key, e)
			return loadResult{entry: e, cached: true}, nil
		}
		e, err := fn()
		if err != nil {
			return nil, err
		}
		c.l1.Add(key, e)
		if c.l2 != nil {
			if err := c.l2.Set(ctx, key, e, c.ttl); err != nil {
				c.logger.Warn("result cache write failed", logging.Err(err), logging.String(logging.FieldCacheLevel, levelL2))
			}
		}
		return loadResult{entry: e}, nil
	})
	if err != nil {
		return cachedEncoding{}, false, err
	}
	r := v.(loadResult)
	// A caller that joined another caller's load did not encode.
	return r.entry, r.cached || (shared && !ran), nil
}

func (c *resultCache) fromL2(ctx context.Context, key string) (cachedEncoding, bool) {
	if c.l2 == nil {
		return cachedEncoding{}, false
	}
	var e cachedEncoding
	err := c.l2.Get(ctx, key, &e)
	if err == nil {
		c.metrics.RecordCacheAccess(levelL2, true)
		return e, true
	}
	if !stderrors.Is(err, redis.ErrCacheMiss) {
		c.logger.Warn("result cache read failed", logging.Err(err), logging.String(logging.FieldCacheLevel, levelL2))
	}
	c.metrics.RecordCacheAccess(levelL2, false)
	return cachedEncoding{}, false
}

// Len reports the number of L1 entries.
func (c *resultCache) Len() int { return c.l1.Len() }

// NormalizeMolfile strips carriage returns, trailing blanks on every line and
// trailing empty lines, so that equivalent files hash alike.
func NormalizeMolfile(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// MolfileHash is the hex SHA-256 of the normalized molfile.
func MolfileHash(text string) string {
	sum := sha256.Sum256([]byte(NormalizeMolfile(text)))
	return hex.EncodeToString(sum[:])
}

// StructureHash is the hex SHA-256 of the JSON form of s.
func StructureHash(s *molecule.Structure) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal structure")
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// CacheKey combines an input hash with the options it was encoded under.
func CacheKey(hash string, opts smarts.Options) string {
	return "smarts:" + hash + ":" + opts.Key()
}

//Personal.AI order the ending

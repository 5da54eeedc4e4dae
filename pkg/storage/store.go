package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cosmohub/subgridemu/pkg/emulator"
)

// Record is a cached prediction result. Records are immutable once stored;
// a repeated prediction for the same key simply overwrites the previous
// record with equivalent content (up to sampling noise).
type Record struct {
	// Key identifies the prediction: statistic, redshift index, parameter
	// vector and sample count. Built with Key().
	Key string `json:"key"`

	Statistic   string    `json:"statistic"`
	ZIndex      int       `json:"zIndex"`
	Params      []float64 `json:"params"`
	GeneratedAt time.Time `json:"generatedAt"`

	Result emulator.Result `json:"result"`
}

// Store caches prediction records. Implementations must be safe for
// concurrent use.
type Store interface {
	Put(ctx context.Context, record Record) error
	Get(ctx context.Context, key string) (Record, bool, error)
}

// Key derives the cache key for a prediction request. The parameter vector
// is rendered with full float64 precision so distinct inputs never collide,
// then hashed to keep keys short and storage-safe.
func Key(statistic string, zIndex int, params []float64, samples int) string {
	var b strings.Builder
	b.WriteString(statistic)
	b.WriteByte('/')
	b.WriteString(strconv.Itoa(zIndex))
	b.WriteByte('/')
	b.WriteString(strconv.Itoa(samples))
	for _, p := range params {
		b.WriteByte('/')
		b.WriteString(strconv.FormatFloat(p, 'g', -1, 64))
	}

	sum := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%s:%s", statistic, hex.EncodeToString(sum[:16]))
}

package token

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"backend-soozu/internal/apperr"
	"backend-soozu/internal/db"
)

const (
	prefix    = "TRV-"
	randomLen = 6
	alphabet  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	DefaultMaxAttempts = 5
)

// Generator produces shareable tracker tokens and guarantees uniqueness
// against the persisted tracker set. The unique constraint on
// trackers.token is the authoritative guard; the existence check here only
// reduces the chance of hitting it.
type Generator struct {
	db db.Querier
}

func NewGenerator(q db.Querier) *Generator {
	return &Generator{db: q}
}

var readRandomFn = rand.Read

var nowFn = time.Now

// Generate returns a token of the form TRV-XXXXXX-NNNN where X is a random
// character from a confusion-free alphabet and NNNN derives from the clock.
func Generate() (string, error) {
	buf := make([]byte, randomLen)
	if _, err := readRandomFn(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = alphabet[int(buf[i])%len(alphabet)]
	}
	suffix := nowFn().Unix() % 10000
	return fmt.Sprintf("%s%s-%04d", prefix, buf, suffix), nil
}

func (g *Generator) exists(ctx context.Context, token string) (bool, error) {
	var ok bool
	err := g.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM trackers WHERE token=$1)`, token).Scan(&ok)
	return ok, err
}

// EnsureUnique generates tokens until one is not already persisted, giving
// up after maxAttempts.
func (g *Generator) EnsureUnique(ctx context.Context, maxAttempts int) (string, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	for i := 0; i < maxAttempts; i++ {
		tok, err := Generate()
		if err != nil {
			return "", err
		}
		taken, err := g.exists(ctx, tok)
		if err != nil {
			return "", err
		}
		if !taken {
			return tok, nil
		}
	}
	return "", apperr.Exhausted(fmt.Sprintf("could not generate unique token in %d attempts", maxAttempts))
}

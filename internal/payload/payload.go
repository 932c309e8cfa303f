/*
PURPOSE:
  Generates the verification URLs that get embedded in the QR codes and parses
  them back into their index and key.

REQUIREMENTS:
  User-specified:
  - Payload is "<base>?i=<index>&k=<key>" with random index and key bytes.
  - A fixed seed must reproduce the same payload sequence.

  Implementation-discovered:
  - URL-safe base64 may contain "=", which is fine inside a QR code.
  - The same seeded stream also drives the random QR placement.

ARCHITECTURE INTEGRATION:
  - Used by: internal/engine, internal/cli (decode)

ERROR HANDLING:
  - Parse returns descriptive errors for malformed URLs.

IMPLEMENTATION RULES:
  - Generator is NOT safe for concurrent use; one per goroutine.

USAGE:
  g := payload.NewGenerator(42)
  s := g.Generate("https://mysomeid.com/v", 8, 32)

RELATED FILES:
  - internal/engine/trial.go
*/

package payload

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	mrand "math/rand/v2"
	"net/url"
)

// Generator produces payloads and positions from a seeded ChaCha8 stream.
type Generator struct {
	src  *mrand.ChaCha8
	rnd  *mrand.Rand
	seed uint64
}

// NewGenerator returns a generator for seed. Seed 0 picks a random seed.
func NewGenerator(seed uint64) *Generator {
	if seed == 0 {
		var b [8]byte
		_, _ = rand.Read(b[:])
		seed = binary.LittleEndian.Uint64(b[:]) | 1
	}
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	src := mrand.NewChaCha8(key)
	return &Generator{src: src, rnd: mrand.New(src), seed: seed}
}

// Seed returns the effective seed, useful to reproduce a run.
func (g *Generator) Seed() uint64 {
	return g.seed
}

// Fork derives an independent generator, e.g. one per worker.
func (g *Generator) Fork() *Generator {
	return NewGenerator(g.rnd.Uint64() | 1)
}

// IntN returns a uniform int in [0, n).
func (g *Generator) IntN(n int) int {
	return g.rnd.IntN(n)
}

// Bytes returns n random bytes.
func (g *Generator) Bytes(n int) []byte {
	b := make([]byte, n)
	_, _ = g.src.Read(b)
	return b
}

// Generate builds a payload URL with indexLen index bytes and keyLen key bytes.
func (g *Generator) Generate(baseURL string, indexLen, keyLen int) string {
	index := base64.URLEncoding.EncodeToString(g.Bytes(indexLen))
	key := base64.URLEncoding.EncodeToString(g.Bytes(keyLen))
	return baseURL + "?i=" + index + "&k=" + key
}

// Parse extracts index and key bytes from a payload URL.
func Parse(s string) (index, key []byte, err error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid payload url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, nil, fmt.Errorf("invalid payload url %q: missing scheme or host", s)
	}

	values, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid payload query: %w", err)
	}
	i, k := values.Get("i"), values.Get("k")
	if i == "" {
		return nil, nil, fmt.Errorf("payload %q has no index (i)", s)
	}
	if k == "" {
		return nil, nil, fmt.Errorf("payload %q has no key (k)", s)
	}

	index, err = base64.URLEncoding.DecodeString(i)
	if err != nil {
		return nil, nil, fmt.Errorf("payload index is not url-safe base64: %w", err)
	}
	key, err = base64.URLEncoding.DecodeString(k)
	if err != nil {
		return nil, nil, fmt.Errorf("payload key is not url-safe base64: %w", err)
	}
	return index, key, nil
}

package password

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
	"sync"
)

// RandomSource draws uniform indexes. Intn returns a value in [0, n) and is
// only called with n > 0.
type RandomSource interface {
	Intn(n int) int
}

// CryptoSource draws from crypto/rand.
type CryptoSource struct{}

// Intn panics if the system random source fails, as crypto/rand does.
func (CryptoSource) Intn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("password: crypto/rand failed: " + err.Error())
	}
	return int(v.Int64())
}

// SeededSource is a deterministic PCG source. It is safe for concurrent use.
type SeededSource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeededSource returns a source that yields the same sequence for the
// same seed.
func NewSeededSource(seed uint64) *SeededSource {
	return &SeededSource{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *SeededSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

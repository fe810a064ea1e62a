package authentication

import (
	"hash/fnv"
	"math"
	"sync"
)

// EmailFilter is a bloom filter over registered emails. A negative answer is
// exact, a positive one still needs a lookup.
type EmailFilter struct {
	mu        sync.RWMutex
	bits      []bool
	numBits   uint
	numHashes uint
}

func NewEmailFilter(expectedEmails uint, falsePositiveRate float64) *EmailFilter {
	expectedEmails = max(expectedEmails, 1)

	m := optimalBitCount(expectedEmails, falsePositiveRate)
	k := optimalHashCount(m, expectedEmails)

	return &EmailFilter{
		bits:      make([]bool, m),
		numBits:   m,
		numHashes: k,
	}
}

func optimalBitCount(n uint, p float64) uint {
	m := -float64(n) * math.Log(p) / (math.Log(2) * math.Log(2))

	return max(uint(math.Ceil(m)), 1)
}

func optimalHashCount(m, n uint) uint {
	k := uint(math.Round(float64(m) / float64(n) * math.Log(2)))

	return max(k, 1)
}

// positions uses double hashing over FNV-1a and FNV-1. The second hash is
// forced odd.
func (f *EmailFilter) positions(email string) []uint {
	h1 := fnv.New32a()
	_, _ = h1.Write([]byte(email))
	v1 := uint(h1.Sum32())

	h2 := fnv.New32()
	_, _ = h2.Write([]byte(email))
	v2 := uint(h2.Sum32()) | 1

	res := make([]uint, f.numHashes)
	for i := range f.numHashes {
		res[i] = (v1 + i*v2) % f.numBits
	}

	return res
}

func (f *EmailFilter) Add(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, pos := range f.positions(email) {
		f.bits[pos] = true
	}
}

// MayContain is false only when email was never added.
func (f *EmailFilter) MayContain(email string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, pos := range f.positions(email) {
		if !f.bits[pos] {
			return false
		}
	}

	return true
}

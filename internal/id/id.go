// Package id mints ULIDs for the records the simulation emits:
// geopolitical events and SDR transactions. ULIDs sort by creation time,
// which keeps event logs and transaction tables naturally ordered.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy io.Reader
)

func init() {
	// Entropy comes from a crypto-seeded PRNG, deliberately separate from
	// the engines' seeded sources: identifiers only tag records, so minting
	// one must never consume a draw from a deterministic stream.
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	entropy = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns a fresh time-sortable identifier.
func New() string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), entropy)
	if err != nil {
		panic(err)
	}
	return id.String()
}

package logger

import (
	"bytes"
	crand "crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"math/rand/v2"
	"sync"
)

// LogID ties together every line written while serving one update or request.
type LogID [8]byte

var nilLogID = LogID{}

func (lid LogID) String() string {
	return hex.EncodeToString(lid[:])
}

func (lid LogID) IsValid() bool {
	return !bytes.Equal(lid[:], nilLogID[:])
}

// idGenerator is shared by all bot workers and http handlers.
type idGenerator struct {
	mu  sync.Mutex
	src *rand.ChaCha8
}

func newIDGenerator() *idGenerator {
	var seed [32]byte
	_ = binary.Read(crand.Reader, binary.LittleEndian, &seed)
	return &idGenerator{src: rand.NewChaCha8(seed)}
}

// next returns a non-zero id.
func (g *idGenerator) next() LogID {
	g.mu.Lock()
	defer g.mu.Unlock()

	var lid LogID
	for !lid.IsValid() {
		_, _ = g.src.Read(lid[:])
	}
	return lid
}

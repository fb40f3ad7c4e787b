package battle

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/footycards/attax-backend/internal/engine"
)

// codeAlphabet omits I, O, 0 and 1 so codes survive being read out loud.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateCode draws a random join code from the ambiguity-free alphabet.
func GenerateCode() (string, error) {
	code := make([]byte, engine.CodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// Directory maps join codes to session ids while sessions wait for an
// opponent. A mapping lives from create until the session leaves waiting.
type Directory interface {
	// Register claims code for sessionID; false when the code is taken.
	Register(code, sessionID string) bool
	// Resolve returns the session id for a code.
	Resolve(code string) (string, bool)
	// Release frees a code once its session fills.
	Release(code string)
}

// MemoryDirectory is the in-process Directory.
type MemoryDirectory struct {
	mu    sync.Mutex
	codes map[string]string
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{codes: make(map[string]string)}
}

func (d *MemoryDirectory) Register(code, sessionID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	code = strings.ToUpper(code)
	if _, taken := d.codes[code]; taken {
		return false
	}
	d.codes[code] = sessionID
	return true
}

func (d *MemoryDirectory) Resolve(code string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, ok := d.codes[strings.ToUpper(code)]
	return id, ok
}

func (d *MemoryDirectory) Release(code string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.codes, strings.ToUpper(code))
}

// Package randsrc defines the cryptographically secure random source
// contract the threshold-ElGamal core depends on. Bootstrapping the actual
// entropy source is out of scope for the core; this package only fixes the
// interface and a thread-safe default backed by crypto/rand.
package randsrc

import (
	"crypto/rand"
	"io"
)

// Source is the random source every core operation draws from. It is
// exactly io.Reader: anything that can fill a byte slice with entropy
// satisfies it, including a mock for deterministic tests.
type Source = io.Reader

// Default returns the process-wide secure random source. crypto/rand.Reader
// is already safe for concurrent use, so no extra locking is added here.
func Default() Source {
	return rand.Reader
}

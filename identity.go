package snowflake

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
)

// DefaultIdentityEnv is the environment variable holding the replica
// identity string, typically the pod UID injected by the Kubernetes
// downward API.
const DefaultIdentityEnv = "POD_UID"

// instanceMask keeps the low 10 bits of the digest tail: 5 for the process
// id above 5 for the worker id.
const instanceMask = 1<<10 - 1

// Identity is the (workerID, processID) pair that disambiguates one
// generating replica. It is derived once per Generator and never changes.
type Identity struct {
	WorkerID  int64
	ProcessID int64
}

// Instance returns the combined 10-bit instance number, processID in the
// high five bits and workerID in the low five.
func (i Identity) Instance() int64 {
	return i.ProcessID<<5 | i.WorkerID
}

func (i Identity) String() string {
	return fmt.Sprintf("worker=%d process=%d", i.WorkerID, i.ProcessID)
}

// DeriveIdentity maps an opaque replica identity string to an Identity
// without any coordination service:
//
//	digest   = SHA-256(identity)
//	instance = uint16(digest[30:32]) & 0x3FF
//	process  = instance >> 5
//	worker   = instance & 0x1F
//
// The same string always yields the same pair. Distinct strings collide
// with probability 1/1024 per pair, so the birthday bound is reached at
// a few dozen replicas; widening the space means changing the ID layout.
//
// An empty or blank identity fails with ErrIdentityMissing rather than
// falling back to worker 0 / process 0.
func DeriveIdentity(identity string) (Identity, error) {
	return deriveIdentity(identity, "")
}

func deriveIdentity(identity, source string) (Identity, error) {
	if strings.TrimSpace(identity) == "" {
		return Identity{}, newIdentityMissingError(source)
	}

	h := sha256.New()
	if _, err := h.Write([]byte(identity)); err != nil {
		return Identity{}, newIdentityDerivationError(source, err)
	}
	digest := h.Sum(nil)
	if len(digest) != sha256.Size {
		return Identity{}, newIdentityDerivationError(source,
			errors.Newf("unexpected digest length %d", len(digest)))
	}

	instance := int64(binary.BigEndian.Uint16(digest[sha256.Size-2:]) & instanceMask)
	return Identity{
		WorkerID:  instance & 0x1F,
		ProcessID: (instance >> 5) & 0x1F,
	}, nil
}

// IdentityFromEnv derives the Identity from the named environment variable.
// An unset or empty variable is a configuration error.
func IdentityFromEnv(name string) (Identity, error) {
	if name == "" {
		name = DefaultIdentityEnv
	}
	return deriveIdentity(os.Getenv(name), "env:"+name)
}

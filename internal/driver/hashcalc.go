package driver

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"

	"github.com/BurntSushi/toml"

	"kernelabi/internal/platform"
	"kernelabi/internal/version"
)

// Digest is a SHA-256 content hash.
type Digest [sha256.Size]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// IsZero reports whether d was never computed.
func (d Digest) IsZero() bool { return d == Digest{} }

func contentDigest(data []byte) Digest {
	return sha256.Sum256(data)
}

// configDigest hashes the TOML form of cfg so equal configurations from
// different files share cache entries.
func configDigest(cfg platform.Config) (Digest, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return Digest{}, err
	}
	return sha256.Sum256(buf.Bytes()), nil
}

// combineDigest: H(content || dep1 || dep2 ...). deps are in a fixed order.
func combineDigest(content Digest, deps ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	_, _ = h.Write([]byte(version.Version))
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// CacheKey identifies the result of running cfg over a module source.
func CacheKey(data []byte, cfg platform.Config) (Digest, error) {
	cd, err := configDigest(cfg)
	if err != nil {
		return Digest{}, err
	}
	return combineDigest(contentDigest(data), cd), nil
}

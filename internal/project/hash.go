package project

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest - фиксированный 256 битный хеш содержимого файла дерева
type Digest [32]byte

// HashContent returns the digest of a tree file's bytes.
func HashContent(data []byte) Digest {
	return sha256.Sum256(data)
}

// Combine строит хеш набора: H( first || rest... ).
// Порядок должен быть детерминированным (пути отсортированы).
func Combine(first Digest, rest ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(first[:])
	for _, d := range rest {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:8])
}

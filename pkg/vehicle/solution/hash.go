package solution

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"hash"

	"github.com/shopspring/decimal"
)

// HashLength is the length of a solution hash in hex characters.
const HashLength = sha1.Size * 2

// Step is one resolved selection: the chosen option and the model it leads to.
type Step struct {
	Mark   string
	Option string
	Model  string
}

// Fingerprint computes a solution hash over the model name, the resolved
// steps in order, and the price. Every field is length-prefixed so that
// moving text between adjacent fields changes the digest.
func Fingerprint(modelName string, steps []Step, price decimal.Decimal) string {
	h := sha1.New()
	writeField(h, modelName)
	for _, s := range steps {
		writeField(h, s.Mark)
		writeField(h, s.Option)
		writeField(h, s.Model)
	}
	writeField(h, price.String())
	return hex.EncodeToString(h.Sum(nil))
}

func writeField(h hash.Hash, s string) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(s)))
	h.Write(n[:])
	h.Write([]byte(s))
}

// TreeRef identifies a tree document by the MD5 of its bytes, in lowercase hex.
func TreeRef(document []byte) string {
	sum := md5.Sum(document)
	return hex.EncodeToString(sum[:])
}

// IsHash reports whether s looks like a lowercase solution hash.
func IsHash(s string) bool {
	if len(s) != HashLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

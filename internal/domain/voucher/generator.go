package voucher

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"
)

type CodeGenerator interface {
	Generate(now time.Time) (Code, error)
}

// RandomCodeGenerator draws the suffix from crypto/rand. Uniqueness is not
// guaranteed here; the store rejects duplicates and the issuer retries.
type RandomCodeGenerator struct {
	prefix string
	reader io.Reader
}

func NewRandomCodeGenerator(prefix string) *RandomCodeGenerator {
	return &RandomCodeGenerator{prefix: strings.ToUpper(prefix), reader: rand.Reader}
}

func (g *RandomCodeGenerator) Generate(now time.Time) (Code, error) {
	alphabetLen := big.NewInt(int64(len(codeAlphabet)))
	suffix := make([]byte, CodeSuffixLength)
	for i := range suffix {
		n, err := rand.Int(g.reader, alphabetLen)
		if err != nil {
			return Code{}, fmt.Errorf("draw code suffix: %w", err)
		}
		suffix[i] = codeAlphabet[n.Int64()]
	}
	return NewCode(fmt.Sprintf("%s-%04d-%s", g.prefix, now.UTC().Year(), suffix))
}

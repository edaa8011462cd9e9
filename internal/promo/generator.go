package promo

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
)

const (
	codeAlphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	RandomCodeLength = 8
)

var codePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ValidateCodeFormat checks an admin-supplied code: alphanumeric only,
// length 4-20.
func ValidateCodeFormat(code string) bool {
	return len(code) >= 4 && len(code) <= 20 && codePattern.MatchString(code)
}

// CodeChecker answers whether a code is already taken. Satisfied by the
// store.
type CodeChecker interface {
	PromoCodeExists(ctx context.Context, code string) (bool, error)
}

// Generator produces promo codes. Codes are not secrets, so math/rand is
// enough; what matters is that a candidate is verified against storage
// before acceptance.
type Generator struct {
	checker CodeChecker
	rnd     *rand.Rand
}

func NewGenerator(checker CodeChecker, rnd *rand.Rand) *Generator {
	return &Generator{checker: checker, rnd: rnd}
}

// Random draws uppercase-alphanumeric codes until one is free.
func (g *Generator) Random(ctx context.Context, length int) (string, error) {
	if length <= 0 {
		length = RandomCodeLength
	}
	for {
		buf := make([]byte, length)
		for i := range buf {
			buf[i] = codeAlphabet[g.rnd.Intn(len(codeAlphabet))]
		}
		code := string(buf)
		exists, err := g.checker.PromoCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
}

// Smart produces a templated candidate from curated word lists; the first
// free candidate wins. When the whole batch collides it falls back to
// Random.
func (g *Generator) Smart(ctx context.Context) (string, error) {
	candidates := []string{
		fmt.Sprintf("%s%d", pick(g.rnd, "VIP", "BONUS", "SALE", "GIFT"), 1000+g.rnd.Intn(9000)),
		fmt.Sprintf("%s%d", pick(g.rnd, "SUMMER", "WINTER", "SPRING", "AUTUMN"), 10+g.rnd.Intn(90)),
		fmt.Sprintf("%s%d", pick(g.rnd, "NEW", "SPECIAL", "MEGA", "SUPER"), 100+g.rnd.Intn(900)),
		fmt.Sprintf("CODE%d", 10000+g.rnd.Intn(90000)),
		fmt.Sprintf("%s%d", pick(g.rnd, "DISCOUNT", "PROMO", "BONUS", "GIFT"), 1+g.rnd.Intn(99)),
	}
	for _, code := range candidates {
		exists, err := g.checker.PromoCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return g.Random(ctx, RandomCodeLength)
}

func pick(rnd *rand.Rand, words ...string) string {
	return words[rnd.Intn(len(words))]
}

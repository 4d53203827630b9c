package reservation

import (
	"crypto/rand"
	"strings"
)

// Crockford base32: no I, L, O or U.
const protocolAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

const ProtocolLength = 10

// Protocol is the human-facing reservation identifier.
type Protocol string

func ParseProtocol(s string) (Protocol, error) {
	p := Protocol(strings.ToUpper(strings.TrimSpace(s)))
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}

func (p Protocol) Validate() error {
	if len(p) != ProtocolLength {
		return ErrInvalidProtocol
	}
	for _, c := range p {
		if !strings.ContainsRune(protocolAlphabet, c) {
			return ErrInvalidProtocol
		}
	}
	return nil
}

func (p Protocol) String() string {
	return string(p)
}

type ProtocolGenerator interface {
	Generate() (Protocol, error)
}

type RandomProtocolGenerator struct{}

func NewRandomProtocolGenerator() *RandomProtocolGenerator {
	return &RandomProtocolGenerator{}
}

func (g *RandomProtocolGenerator) Generate() (Protocol, error) {
	buf := make([]byte, ProtocolLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, ProtocolLength)
	for i, b := range buf {
		// 256 is a multiple of 32, so the modulo is unbiased.
		out[i] = protocolAlphabet[int(b)%len(protocolAlphabet)]
	}
	return Protocol(out), nil
}

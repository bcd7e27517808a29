// Package seal wraps a ledger's root hash in a COSE Sign1 envelope, giving
// a peer a way to attribute a ConsistencyProof or LedgerStatus's root to
// this node's signing key independent of whatever the transport already
// authenticates. It is trimmed down from the teacher's massifs/cose
// package to the single case this spec needs: ES256 over a fixed tuple,
// no CWT claims, no DID-based key resolution.
package seal

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	cose "github.com/veraison/go-cose"

	"github.com/datatrails/go-merklelog-seeder/wire"
)

// Payload is the CBOR-encoded structure signed over: it binds a root hash
// to the specific ledger and prefix length it was computed for, so a
// sealed root from one ledger can never be replayed as another's.
type Payload struct {
	LedgerID wire.LedgerID `cbor:"1,keyasint"`
	SeqNo    wire.SeqNo    `cbor:"2,keyasint"`
	RootHash wire.Hash     `cbor:"3,keyasint"`
}

// SignedRoot is the decoded result of verifying a sealed root.
type SignedRoot struct {
	Payload Payload
}

// Signer produces a COSE Sign1 envelope (CBOR bytes) over a root hash.
type Signer interface {
	Sign(ledgerID wire.LedgerID, seqNo wire.SeqNo, root wire.Hash) ([]byte, error)
}

// Verifier checks a sealed root against a public key and recovers its
// payload.
type Verifier interface {
	Verify(sealed []byte, pub crypto.PublicKey) (SignedRoot, error)
}

// ecdsaSigner signs with ES256 over an *ecdsa.PrivateKey, the only
// algorithm this package supports — matching the ES256-only usage the
// teacher's signed massif roots settle on in practice.
type ecdsaSigner struct {
	key *ecdsa.PrivateKey
}

// NewSigner wraps an ECDSA P-256 key as a Signer.
func NewSigner(key *ecdsa.PrivateKey) Signer {
	return &ecdsaSigner{key: key}
}

func (s *ecdsaSigner) Sign(ledgerID wire.LedgerID, seqNo wire.SeqNo, root wire.Hash) ([]byte, error) {
	payload, err := cbor.Marshal(Payload{LedgerID: ledgerID, SeqNo: seqNo, RootHash: root})
	if err != nil {
		return nil, fmt.Errorf("seal: encode payload: %w", err)
	}

	signer, err := cose.NewSigner(cose.AlgorithmES256, s.key)
	if err != nil {
		return nil, fmt.Errorf("seal: build signer: %w", err)
	}

	msg := cose.NewSign1Message()
	msg.Headers.Protected.SetAlgorithm(cose.AlgorithmES256)
	msg.Payload = payload

	if err := msg.Sign(rand.Reader, nil, signer); err != nil {
		return nil, fmt.Errorf("seal: sign: %w", err)
	}

	out, err := msg.MarshalCBOR()
	if err != nil {
		return nil, fmt.Errorf("seal: marshal cose message: %w", err)
	}
	return out, nil
}

// ecdsaVerifier verifies ES256 Sign1 envelopes against an *ecdsa.PublicKey.
type ecdsaVerifier struct{}

// NewVerifier returns a Verifier for ES256 sealed roots.
func NewVerifier() Verifier {
	return &ecdsaVerifier{}
}

func (v *ecdsaVerifier) Verify(sealed []byte, pub crypto.PublicKey) (SignedRoot, error) {
	ecPub, ok := pub.(*ecdsa.PublicKey)
	if !ok {
		return SignedRoot{}, fmt.Errorf("seal: verify: public key is %T, want *ecdsa.PublicKey", pub)
	}

	verifier, err := cose.NewVerifier(cose.AlgorithmES256, ecPub)
	if err != nil {
		return SignedRoot{}, fmt.Errorf("seal: build verifier: %w", err)
	}

	var msg cose.Sign1Message
	if err := msg.UnmarshalCBOR(sealed); err != nil {
		return SignedRoot{}, fmt.Errorf("seal: decode cose message: %w", err)
	}
	if err := msg.Verify(nil, verifier); err != nil {
		return SignedRoot{}, fmt.Errorf("seal: verify signature: %w", err)
	}

	var payload Payload
	if err := cbor.Unmarshal(msg.Payload, &payload); err != nil {
		return SignedRoot{}, fmt.Errorf("seal: decode payload: %w", err)
	}
	return SignedRoot{Payload: payload}, nil
}

// noopSigner is the default when a seeder is constructed without
// WithRootSeal: no trailer is attached, and ConsistencyProof/LedgerStatus
// remain fully RFC 6962 verifiable on their own.
type noopSigner struct{}

// Noop returns a Signer that never produces a seal.
func Noop() Signer { return noopSigner{} }

func (noopSigner) Sign(wire.LedgerID, wire.SeqNo, wire.Hash) ([]byte, error) {
	return nil, nil
}

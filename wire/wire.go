// Package wire defines the seeder's message schemas: the typed payloads
// that travel over the node's receive channel and send callback. None of
// these types interpret transaction content; they only carry it.
package wire

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// LedgerID selects one of the node's registered append-only logs.
type LedgerID uint32

// SeqNo is a 1-based index of a committed transaction within one ledger.
// 0 denotes the empty prefix.
type SeqNo uint64

// Hash is a fixed-width SHA-256 digest, rendered as lowercase hex on the
// wire.
type Hash [32]byte

// ErrBadHashLength is returned when decoding a hex string of the wrong size.
var ErrBadHashLength = errors.New("wire: hash must decode to 32 bytes")

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// MarshalJSON renders the hash as a lowercase hex string.
func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// UnmarshalJSON parses a lowercase (or mixed-case) hex string.
func (h *Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("wire: decode hash: %w", err)
	}
	if len(b) != len(h) {
		return ErrBadHashLength
	}
	copy(h[:], b)
	return nil
}

// HashFromBytes copies a 32-byte raw digest into a Hash. Any other length
// is rejected with ErrBadHashLength; nothing is truncated or padded.
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != len(h) {
		return Hash{}, ErrBadHashLength
	}
	copy(h[:], b)
	return h, nil
}

// Txn is an opaque, serializable transaction record. The seeder never
// interprets Payload; ExtraData is populated by the collaborator's
// extra-data decorator before the transaction is placed on the wire.
type Txn struct {
	Payload   json.RawMessage `json:"payload"`
	ExtraData json.RawMessage `json:"extraData,omitempty"`
}

// LedgerStatus announces a peer's (or our own) view of one ledger's size
// and root.
type LedgerStatus struct {
	LedgerID        LedgerID `json:"ledgerId"`
	TxnSeqNo        int64    `json:"txnSeqNo"`
	ViewNo          uint64   `json:"viewNo"`
	PpSeqNo         uint64   `json:"ppSeqNo"`
	MerkleRoot      Hash     `json:"merkleRoot"`
	ProtocolVersion uint16   `json:"protocolVersion"`
	SealedRoot      []byte   `json:"sealedRoot,omitempty"`
}

// CatchupReq asks for transactions in [SeqNoStart, SeqNoEnd] plus a
// consistency proof from SeqNoEnd to CatchupTill.
type CatchupReq struct {
	LedgerID    LedgerID `json:"ledgerId"`
	SeqNoStart  uint64   `json:"seqNoStart"`
	SeqNoEnd    uint64   `json:"seqNoEnd"`
	CatchupTill uint64   `json:"catchupTill"`
}

// CatchupRep answers a CatchupReq with the requested transactions, in
// ascending SeqNo order, plus the consistency proof hex-encoded.
type CatchupRep struct {
	LedgerID  LedgerID   `json:"ledgerId"`
	Txns      SortedTxns `json:"txns"`
	ConsProof []string   `json:"consProof"`
}

// ConsistencyProof proves that the tree of size SeqNoStart is a prefix of
// the tree of size SeqNoEnd.
type ConsistencyProof struct {
	LedgerID      LedgerID `json:"ledgerId"`
	SeqNoStart    uint64   `json:"seqNoStart"`
	SeqNoEnd      uint64   `json:"seqNoEnd"`
	ViewNo        uint64   `json:"viewNo"`
	PpSeqNo       uint64   `json:"ppSeqNo"`
	OldMerkleRoot Hash     `json:"oldMerkleRoot"`
	NewMerkleRoot Hash     `json:"newMerkleRoot"`
	Hashes        []string `json:"hashes"`
	SealedRoot    []byte   `json:"sealedRoot,omitempty"`
}

// HexHashes renders a slice of Hash values as lowercase hex strings, the
// wire representation used by CatchupRep.ConsProof and
// ConsistencyProof.Hashes.
func HexHashes(hs [][32]byte) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = hex.EncodeToString(h[:])
	}
	return out
}

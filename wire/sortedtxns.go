package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// SortedTxns is an ordered map<SeqNo, Txn>, keyed by ascending sequence
// number. Go maps have no iteration order, so the "ordered-by-SeqNo
// mapping" called for in the wire schema needs an explicit type: entries
// are appended in the order the caller adds them and sorted once at
// construction, giving every peer a deterministic byte-for-byte encoding to
// hash or deduplicate against.
type SortedTxns struct {
	seqNos []uint64
	txns   map[uint64]Txn
}

// NewSortedTxns builds a SortedTxns from an unordered map, sorting keys
// ascending.
func NewSortedTxns(m map[uint64]Txn) SortedTxns {
	s := SortedTxns{txns: make(map[uint64]Txn, len(m))}
	for seqNo, txn := range m {
		s.seqNos = append(s.seqNos, seqNo)
		s.txns[seqNo] = txn
	}
	sort.Slice(s.seqNos, func(i, j int) bool { return s.seqNos[i] < s.seqNos[j] })
	return s
}

// Len returns the number of entries.
func (s SortedTxns) Len() int { return len(s.seqNos) }

// SeqNos returns the ascending list of keys. The returned slice must not be
// mutated by the caller.
func (s SortedTxns) SeqNos() []uint64 { return s.seqNos }

// Get returns the transaction at seqNo, if present.
func (s SortedTxns) Get(seqNo uint64) (Txn, bool) {
	t, ok := s.txns[seqNo]
	return t, ok
}

// Split partitions the entries at index i: the left half holds [0, i), the
// right half [i, Len()). Used by the response splitter.
func (s SortedTxns) Split(i int) (left, right SortedTxns) {
	left = SortedTxns{
		seqNos: append([]uint64(nil), s.seqNos[:i]...),
		txns:   make(map[uint64]Txn, i),
	}
	for _, seqNo := range left.seqNos {
		left.txns[seqNo] = s.txns[seqNo]
	}
	right = SortedTxns{
		seqNos: append([]uint64(nil), s.seqNos[i:]...),
		txns:   make(map[uint64]Txn, len(s.seqNos)-i),
	}
	for _, seqNo := range right.seqNos {
		right.txns[seqNo] = s.txns[seqNo]
	}
	return left, right
}

// MarshalJSON emits a JSON object with keys in ascending numeric order.
// encoding/json sorts map[string]V keys lexically, which is wrong once keys
// exceed a single digit (e.g. "10" sorts before "2"), so the object is
// built manually.
func (s SortedTxns) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, seqNo := range s.seqNos {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(fmt.Sprintf("%d", seqNo))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(s.txns[seqNo])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON parses a JSON object of seqNo-keyed transactions, producing
// an ascending-ordered SortedTxns regardless of the key order on the wire.
func (s *SortedTxns) UnmarshalJSON(data []byte) error {
	raw := make(map[string]Txn)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m := make(map[uint64]Txn, len(raw))
	for k, v := range raw {
		var seqNo uint64
		if _, err := fmt.Sscanf(k, "%d", &seqNo); err != nil {
			return fmt.Errorf("wire: bad txn key %q: %w", k, err)
		}
		m[seqNo] = v
	}
	*s = NewSortedTxns(m)
	return nil
}

package wire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSortedTxnsMarshalJSONOrdersKeysNumericallyNotLexically(t *testing.T) {
	txns := map[uint64]Txn{
		10: {Payload: json.RawMessage(`{"seq":10}`)},
		2:  {Payload: json.RawMessage(`{"seq":2}`)},
		1:  {Payload: json.RawMessage(`{"seq":1}`)},
	}
	s := NewSortedTxns(txns)

	data, err := s.MarshalJSON()
	require.NoError(t, err)

	// Lexical key sort would place "10" before "2"; the numeric order
	// required by the wire schema places it after.
	idx1 := indexOf(t, string(data), `"1":`)
	idx2 := indexOf(t, string(data), `"2":`)
	idx10 := indexOf(t, string(data), `"10":`)
	require.Less(t, idx1, idx2)
	require.Less(t, idx2, idx10)
}

func indexOf(t *testing.T, haystack, needle string) int {
	t.Helper()
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	t.Fatalf("substring %q not found in %q", needle, haystack)
	return -1
}

func TestSortedTxnsMarshalUnmarshalRoundTrip(t *testing.T) {
	txns := map[uint64]Txn{
		1:  {Payload: json.RawMessage(`{"seq":1}`)},
		2:  {Payload: json.RawMessage(`{"seq":2}`)},
		10: {Payload: json.RawMessage(`{"seq":10}`), ExtraData: json.RawMessage(`{"extra":true}`)},
	}
	s := NewSortedTxns(txns)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var got SortedTxns
	require.NoError(t, json.Unmarshal(data, &got))

	require.Equal(t, []uint64{1, 2, 10}, got.SeqNos())
	for seqNo, want := range txns {
		gotTxn, ok := got.Get(seqNo)
		require.True(t, ok)
		require.JSONEq(t, string(want.Payload), string(gotTxn.Payload))
	}
}

func TestSortedTxnsUnmarshalJSONAcceptsOutOfOrderKeys(t *testing.T) {
	raw := `{"10":{"payload":{"seq":10}},"2":{"payload":{"seq":2}}}`

	var got SortedTxns
	require.NoError(t, json.Unmarshal([]byte(raw), &got))

	require.Equal(t, []uint64{2, 10}, got.SeqNos())
}

func TestSortedTxnsUnmarshalJSONRejectsNonNumericKey(t *testing.T) {
	raw := `{"abc":{"payload":{}}}`

	var got SortedTxns
	require.Error(t, json.Unmarshal([]byte(raw), &got))
}

func TestHashMarshalUnmarshalRoundTrip(t *testing.T) {
	var h Hash
	for i := range h {
		h[i] = byte(i)
	}

	data, err := json.Marshal(h)
	require.NoError(t, err)
	require.Equal(t, `"`+h.String()+`"`, string(data))

	var got Hash
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, h, got)
}

func TestHashUnmarshalJSONRejectsWrongLength(t *testing.T) {
	var h Hash
	err := json.Unmarshal([]byte(`"abcd"`), &h)
	require.ErrorIs(t, err, ErrBadHashLength)
}

func TestHashUnmarshalJSONRejectsInvalidHex(t *testing.T) {
	var h Hash
	err := json.Unmarshal([]byte(`"not-hex-not-hex-not-hex-not-hex!!"`), &h)
	require.Error(t, err)
}

func TestHashFromBytes(t *testing.T) {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i + 1)
	}

	h, err := HashFromBytes(raw)
	require.NoError(t, err)
	require.Equal(t, raw, h[:])

	_, err = HashFromBytes(raw[:31])
	require.ErrorIs(t, err, ErrBadHashLength)
}

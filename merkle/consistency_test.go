package merkle

import (
	"crypto/sha256"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type sliceLeaves [][]byte

func (s sliceLeaves) LeafData(i uint64) ([]byte, error) { return s[i], nil }
func (s sliceLeaves) LeafCount() uint64                 { return uint64(len(s)) }

func makeLeaves(n int) sliceLeaves {
	leaves := make(sliceLeaves, n)
	for i := 0; i < n; i++ {
		leaves[i] = []byte(fmt.Sprintf("txn-%d", i))
	}
	return leaves
}

func TestRootHashOfPrefixEmpty(t *testing.T) {
	e := New(makeLeaves(0))
	root, err := e.RootHashOfPrefix(0)
	require.NoError(t, err)
	require.Equal(t, sha256.Sum256(nil), root)
}

func TestRootHashOfPrefixZeroIsCurrentRootWhenNonEmpty(t *testing.T) {
	e := New(makeLeaves(10))
	root0, err := e.RootHashOfPrefix(0)
	require.NoError(t, err)
	root10, err := e.RootHashOfPrefix(10)
	require.NoError(t, err)
	require.Equal(t, root10, root0)
}

func TestRootHashOfPrefixOutOfRange(t *testing.T) {
	e := New(makeLeaves(5))
	_, err := e.RootHashOfPrefix(6)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestLeafVsInteriorDomainSeparation(t *testing.T) {
	e := New(makeLeaves(2))
	leafOnly, err := e.SubtreeHash(0, 1)
	require.NoError(t, err)
	whole, err := e.SubtreeHash(0, 2)
	require.NoError(t, err)
	require.NotEqual(t, leafOnly, whole)
}

func TestConsistencyProofRoundTrip(t *testing.T) {
	sizes := []int{1, 2, 3, 4, 5, 7, 8, 10, 16, 17, 31}
	for _, n := range sizes {
		n := n
		t.Run(fmt.Sprintf("size-%d", n), func(t *testing.T) {
			e := New(makeLeaves(n))
			for m := 0; m <= n; m++ {
				proof, err := e.ConsistencyProof(uint64(m), uint64(n))
				require.NoError(t, err)

				var oldRoot [32]byte
				if m == 0 {
					oldRoot, err = e.RootHashOfPrefix(uint64(n))
				} else {
					oldRoot, err = e.RootHashOfPrefix(uint64(m))
				}
				require.NoError(t, err)
				newRoot, err := e.RootHashOfPrefix(uint64(n))
				require.NoError(t, err)

				if m == 0 {
					// The engine's proof is conceptually empty for m==0;
					// wrapping it into a single-element placeholder list is
					// the seeder's job, not the engine's (see catchup
					// package). Verify only the trivial round-trip here.
					require.Empty(t, proof)
					continue
				}

				ok, err := VerifyConsistency(uint64(m), uint64(n), proof, oldRoot, newRoot)
				require.NoError(t, err)
				require.True(t, ok, "m=%d n=%d proof=%v", m, n, proof)
			}
		})
	}
}

func TestConsistencyProofEmptyWhenEqual(t *testing.T) {
	e := New(makeLeaves(9))
	proof, err := e.ConsistencyProof(9, 9)
	require.NoError(t, err)
	require.Empty(t, proof)
}

func TestConsistencyProofRejectsOutOfRange(t *testing.T) {
	e := New(makeLeaves(5))
	_, err := e.ConsistencyProof(3, 6)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = e.ConsistencyProof(6, 5)
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestVerifyConsistencyDetectsTamperedProof(t *testing.T) {
	e := New(makeLeaves(10))
	proof, err := e.ConsistencyProof(4, 10)
	require.NoError(t, err)
	require.NotEmpty(t, proof)

	tampered := append([][32]byte(nil), proof...)
	tampered[0][0] ^= 0xFF

	oldRoot, err := e.RootHashOfPrefix(4)
	require.NoError(t, err)
	newRoot, err := e.RootHashOfPrefix(10)
	require.NoError(t, err)

	ok, err := VerifyConsistency(4, 10, tampered, oldRoot, newRoot)
	require.Error(t, err)
	require.False(t, ok)
}

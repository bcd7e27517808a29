package merkle

import "errors"

// ErrConsistencyCheck is returned by VerifyConsistency when a proof does
// not bind oldRoot and newRoot together.
var ErrConsistencyCheck = errors.New("merkle: consistency check failed")

// VerifyConsistency checks a consistency proof produced by
// (*Engine).ConsistencyProof against two previously obtained root hashes,
// without access to the underlying leaves. It mirrors, step for step, the
// recursion (*Engine).subproof used to build the proof: the verifier
// re-derives both the claimed old-tree root and the claimed new-tree root
// from the same hash list, and accepts only if both match what the caller
// already believes. This module's own tests use it to confirm round-trip
// correctness of proof construction; a peer implementation would run an
// equivalent verifier against the hex-decoded wire proof.
func VerifyConsistency(m, n uint64, proof [][32]byte, oldRoot, newRoot [32]byte) (bool, error) {
	if m > n {
		return false, ErrInvalidRange
	}
	if m == n {
		if len(proof) != 0 {
			return false, ErrConsistencyCheck
		}
		return oldRoot == newRoot, nil
	}
	if m == 0 {
		return len(proof) == 0, nil
	}

	oldHash, newHash, idx, err := verifySubproof(m, 0, n, true, oldRoot, proof, 0)
	if err != nil {
		return false, err
	}
	if idx != len(proof) {
		return false, ErrConsistencyCheck
	}
	if newHash != newRoot || oldHash != oldRoot {
		return false, ErrConsistencyCheck
	}
	return true, nil
}

// verifySubproof is the verification counterpart of (*Engine).subproof: it
// consumes proof hashes in exactly the order subproof appended them,
// reconstructing the old-tree and new-tree hash for the subtree [lo, hi).
func verifySubproof(
	m, lo, hi uint64, complete bool, oldRoot [32]byte, proof [][32]byte, idx int,
) (oldHash, newHash [32]byte, nidx int, err error) {
	n := hi - lo
	if m == n {
		if complete {
			return oldRoot, oldRoot, idx, nil
		}
		if idx >= len(proof) {
			return [32]byte{}, [32]byte{}, idx, ErrConsistencyCheck
		}
		h := proof[idx]
		return h, h, idx + 1, nil
	}

	k := splitPoint(n)
	if m <= k {
		leftOld, leftNew, idx, err := verifySubproof(m, lo, lo+k, complete, oldRoot, proof, idx)
		if err != nil {
			return [32]byte{}, [32]byte{}, idx, err
		}
		if idx >= len(proof) {
			return [32]byte{}, [32]byte{}, idx, ErrConsistencyCheck
		}
		right := proof[idx]
		idx++
		return leftOld, interiorHash(leftNew, right), idx, nil
	}

	rightOld, rightNew, idx, err := verifySubproof(m-k, lo+k, hi, false, oldRoot, proof, idx)
	if err != nil {
		return [32]byte{}, [32]byte{}, idx, err
	}
	if idx >= len(proof) {
		return [32]byte{}, [32]byte{}, idx, ErrConsistencyCheck
	}
	left := proof[idx]
	idx++
	return interiorHash(left, rightOld), interiorHash(left, rightNew), idx, nil
}

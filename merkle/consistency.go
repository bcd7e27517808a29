package merkle

// ConsistencyProof produces the ordered hash list proving that the
// size-m tree is a prefix of the size-n tree, per RFC 6962 section 2.1.2's
// SUBPROOF algorithm. 0 <= m <= n <= Size() is required.
//
// Tie-break: when m == n the proof is empty (the caller already has both
// roots and they're identical by definition of "prefix of itself"). When
// m == 0 the proof is conceptually empty here — the engine only ever deals
// in hashes, never in wire framing, so the "peer has no data" placeholder
// wrapping described in the catchup package's design notes happens one
// layer up, not here.
func (e *Engine) ConsistencyProof(m, n uint64) ([][32]byte, error) {
	size := e.Size()
	if m > n {
		return nil, ErrInvalidRange
	}
	if n > size {
		return nil, ErrOutOfRange
	}
	if m == 0 {
		return nil, nil
	}
	return e.subproof(m, 0, n, true)
}

// subproof implements RFC 6962's SUBPROOF(m, D[lo:hi], complete). m is the
// 1-based prefix length being proven, relative to the start of [lo, hi).
func (e *Engine) subproof(m, lo, hi uint64, complete bool) ([][32]byte, error) {
	n := hi - lo
	if m == n {
		if complete {
			// The requested prefix *is* this whole subtree: no further
			// hashes are needed to bind it, since the verifier already
			// knows this subtree's role from the proof's structure.
			return nil, nil
		}
		root, err := e.mth(lo, hi)
		if err != nil {
			return nil, err
		}
		return [][32]byte{root}, nil
	}

	k := splitPoint(n)
	if m <= k {
		// m falls inside the left, perfectly-sized subtree [lo, lo+k).
		sub, err := e.subproof(m, lo, lo+k, complete)
		if err != nil {
			return nil, err
		}
		right, err := e.mth(lo+k, hi)
		if err != nil {
			return nil, err
		}
		return append(sub, right), nil
	}

	// m falls inside the right remainder [lo+k, hi); the left subtree of
	// size k is necessarily complete and contributes its root directly.
	sub, err := e.subproof(m-k, lo+k, hi, false)
	if err != nil {
		return nil, err
	}
	left, err := e.mth(lo, lo+k)
	if err != nil {
		return nil, err
	}
	return append(sub, left), nil
}

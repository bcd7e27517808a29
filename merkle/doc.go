// Package merkle computes subtree root hashes and RFC 6962-style
// consistency proofs over a prefix of an append-only hash tree.
//
// References:
//   - https://datatracker.ietf.org/doc/html/rfc6962#section-2.1 (MTH, the
//     Merkle Tree Hash)
//   - https://datatracker.ietf.org/doc/html/rfc6962#section-2.1.2
//     (consistency proofs between two tree sizes)
//
// Unlike a history-based accumulator (an MMR), this tree is always
// addressed by a *prefix length*: RootHashOfPrefix(n) is the root of the
// tree formed by the first n leaves, and ConsistencyProof(m, n) proves that
// tree m is a prefix of tree n. Both operations recompute subtree hashes
// on demand from the LeafSource rather than maintaining persistent interior
// nodes; callers with large trees are expected to cache at the LeafSource
// layer if recomputation becomes a bottleneck.
package merkle

package seal

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datatrails/go-merklelog-seeder/wire"
)

func genKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return key
}

func TestSignVerifyRoundTrip(t *testing.T) {
	key := genKey(t)
	signer := NewSigner(key)
	verifier := NewVerifier()

	root := wire.Hash{1, 2, 3}
	sealed, err := signer.Sign(5, 10, root)
	require.NoError(t, err)
	require.NotEmpty(t, sealed)

	got, err := verifier.Verify(sealed, &key.PublicKey)
	require.NoError(t, err)
	require.Equal(t, wire.LedgerID(5), got.Payload.LedgerID)
	require.Equal(t, wire.SeqNo(10), got.Payload.SeqNo)
	require.Equal(t, root, got.Payload.RootHash)
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	key := genKey(t)
	other := genKey(t)

	sealed, err := NewSigner(key).Sign(1, 1, wire.Hash{9})
	require.NoError(t, err)

	_, err = NewVerifier().Verify(sealed, &other.PublicKey)
	require.Error(t, err)
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	key := genKey(t)
	sealed, err := NewSigner(key).Sign(1, 1, wire.Hash{9})
	require.NoError(t, err)

	tampered := append([]byte(nil), sealed...)
	tampered[len(tampered)-1] ^= 0xFF

	_, err = NewVerifier().Verify(tampered, &key.PublicKey)
	require.Error(t, err)
}

func TestNoopSignerProducesNoSeal(t *testing.T) {
	out, err := Noop().Sign(1, 1, wire.Hash{})
	require.NoError(t, err)
	require.Nil(t, out)
}

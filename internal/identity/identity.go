// Package identity derives stable pseudonyms from client TLS certificates.
//
// The server accepts any client certificate during the handshake and applies
// trust afterwards (trust on first use). An identity is only a fingerprint:
// possession of the matching private key is proven by the TLS handshake, but
// no certificate authority vouches for it.
package identity

import (
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"errors"

	"github.com/mcoot/gemtofu/internal/model"
)

// ErrIdentityMissing is returned when the peer presented no certificate
var ErrIdentityMissing = errors.New("client certificate required")

// FromCertificate returns the identity for a DER-encoded certificate
func FromCertificate(der []byte) (model.Identity, error) {
	if len(der) == 0 {
		return "", ErrIdentityMissing
	}
	sum := sha256.Sum256(der)
	return model.Identity(hex.EncodeToString(sum[:])), nil
}

// FromConnectionState returns the identity of the leaf peer certificate of a
// completed handshake
func FromConnectionState(state tls.ConnectionState) (model.Identity, error) {
	if len(state.PeerCertificates) == 0 {
		return "", ErrIdentityMissing
	}
	return FromCertificate(state.PeerCertificates[0].Raw)
}

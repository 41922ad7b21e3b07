// Package signature recovers signing-key fingerprints from detached OpenPGP
// signatures. It never verifies the signature against the artifact; the
// baseline only records which key claims to have signed each dependency.
package signature

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
)

// NoKey is the sentinel trust value recorded when no signature was
// available or parseable for a coordinate.
const NoKey = "noKey"

// ErrNoSignature reports that the input held no OpenPGP signature packet.
var ErrNoSignature = errors.New("no signature packet found")

const armorHeader = "-----BEGIN PGP SIGNATURE-----"

// Fingerprinter extracts a signer fingerprint from detached signature bytes.
type Fingerprinter interface {
	Extract(sig []byte) (string, error)
}

// OpenPGP is the production Fingerprinter.
type OpenPGP struct{}

// Extract parses a detached signature (armored or binary) and returns the
// issuer key fingerprint as lowercase hex. Signatures that predate the
// issuer-fingerprint subpacket fall back to the 64-bit key id.
func (OpenPGP) Extract(sig []byte) (string, error) {
	var r io.Reader = bytes.NewReader(sig)
	if bytes.Contains(sig, []byte(armorHeader)) {
		block, err := armor.Decode(r)
		if err != nil {
			return "", fmt.Errorf("decoding armor: %w", err)
		}
		r = block.Body
	}

	pr := packet.NewReader(r)
	for {
		p, err := pr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("reading signature packet: %w", err)
		}
		s, ok := p.(*packet.Signature)
		if !ok {
			continue
		}
		if len(s.IssuerFingerprint) > 0 {
			return hex.EncodeToString(s.IssuerFingerprint), nil
		}
		if s.IssuerKeyId != nil {
			return fmt.Sprintf("%016x", *s.IssuerKeyId), nil
		}
	}
	return "", ErrNoSignature
}

package radio

import (
	"crypto/sha1"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pskIterations = 4096
	pskLen        = 32
)

// DerivePSK computes the WPA/WPA2 pairwise master key for a passphrase,
// salted with the SSID as IEEE 802.11i specifies.
func DerivePSK(passphrase, ssid string) []byte {
	return pbkdf2.Key([]byte(passphrase), []byte(ssid), pskIterations, pskLen, sha1.New)
}

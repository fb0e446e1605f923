package auth

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// signingMessagePrefix is the fixed prefix of the wallet login challenge.
// Clients must sign exactly ChallengeMessage(nonce) with eth_personalSign.
const signingMessagePrefix = "Login to Etched"

// ErrSignatureFormat reports a signature that cannot be parsed at all
// (wrong length, bad hex, impossible recovery id). It is distinct from a
// recovery failure so the two surface with different messages, though both
// end up as an authentication failure for the client.
var ErrSignatureFormat = errors.New("invalid signature format")

// ErrSignatureRecovery reports a well-formed signature from which no public
// key could be recovered.
var ErrSignatureRecovery = errors.New("signature recovery failed")

// ChallengeMessage builds the exact text a wallet must sign for the given
// nonce.
func ChallengeMessage(nonce string) string {
	return signingMessagePrefix + ": " + nonce
}

// ValidAddress reports whether s looks like a wallet address: "0x" followed
// by 40 hex characters, case-insensitive.
func ValidAddress(s string) bool {
	return strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}

// RecoverAddress recovers the lowercase address that signed message with the
// given hex-encoded 65-byte signature. Signatures produced by wallets carry a
// recovery id of 27/28 and are normalized to 0/1 before recovery. Recovery
// never panics: it either yields an address or a malformed-signature error;
// comparing the result against a claimed address is the caller's job.
func RecoverAddress(message, sigHex string) (string, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(sigHex), "0x"))
	if err != nil || len(raw) != crypto.SignatureLength {
		return "", ErrSignatureFormat
	}
	sig := make([]byte, crypto.SignatureLength)
	copy(sig, raw)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	if sig[crypto.RecoveryIDOffset] > 1 {
		return "", ErrSignatureFormat
	}

	pub, err := crypto.SigToPub(personalHash(message), sig)
	if err != nil {
		return "", ErrSignatureRecovery
	}
	return lowercase(crypto.PubkeyToAddress(*pub).Hex()), nil
}

// personalHash applies the EIP-191 "personal message" envelope before
// hashing, matching what eth_personalSign does on the client.
func personalHash(message string) []byte {
	return crypto.Keccak256([]byte(fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)))
}

// lowercase is the canonical address fold used everywhere in this package.
func lowercase(s string) string { return strings.ToLower(s) }

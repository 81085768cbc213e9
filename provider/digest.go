package provider

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// SHA512Base64 is the legacy est hash: SHA-512 over the canonical string,
// Base64 encoded.
func SHA512Base64(canonical string) string {
	sum := sha512.Sum512([]byte(canonical))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// HMACSHA512Base64 is the API-key variant: HMAC-SHA512 keyed with the
// store secret, Base64 encoded. The secret acts only as the key; it does
// not also appear inside the canonical string.
func HMACSHA512Base64(canonical, key string) string {
	mac := hmac.New(sha512.New, []byte(key))
	mac.Write([]byte(canonical))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// SHA1HexUpper is the VPOS outbound hash: SHA-1, uppercase hex. Also used
// for the terminal password pre-hash.
func SHA1HexUpper(canonical string) string {
	sum := sha1.Sum([]byte(canonical))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// SHA1Base64 is the VPOS inbound callback hash: SHA-1, Base64. The
// outbound and inbound encodings genuinely differ on this protocol.
func SHA1Base64(canonical string) string {
	sum := sha1.Sum([]byte(canonical))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// DigestEqual compares two digest strings in constant time shape. Digests
// are not secrets themselves, but comparing them uniformly avoids giving
// callback forgers a timing side channel.
func DigestEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := 0; i < len(a); i++ {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}

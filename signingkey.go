package s3component

import (
	"crypto/hmac"
	"crypto/sha256"
	"strings"
)

const (
	// ServiceName is the service component of the credential scope.
	ServiceName = "s3"
	// ScopeTerminator closes every credential scope.
	ScopeTerminator = "aws4_request"
)

// SigningKey is the final key of the derivation chain. It is recomputed for
// every signature and zeroed once used.
type SigningKey []byte

// Zero overwrites the key material.
func (k SigningKey) Zero() {
	for i := range k {
		k[i] = 0
	}
}

// DeriveSigningKey computes the scoped signing key:
//
//	kDate    = HMAC-SHA256("AWS4" + secret, dateStamp)
//	kRegion  = HMAC-SHA256(kDate, region)
//	kService = HMAC-SHA256(kRegion, service)
//	kSigning = HMAC-SHA256(kService, "aws4_request")
//
// dateStamp is the UTC date in YYYYMMDD form. The key is only valid for that
// day, so it must not be cached across calls.
func DeriveSigningKey(secretKey, dateStamp, region, service string) SigningKey {
	kDate := hmacSHA256([]byte("AWS4"+secretKey), []byte(dateStamp))
	kRegion := hmacSHA256(kDate, []byte(region))
	kService := hmacSHA256(kRegion, []byte(service))
	kSigning := hmacSHA256(kService, []byte(ScopeTerminator))

	SigningKey(kDate).Zero()
	SigningKey(kRegion).Zero()
	SigningKey(kService).Zero()

	return kSigning
}

// CredentialScope binds a signature to a day, region and service.
// Format: date/region/service/aws4_request
func CredentialScope(dateStamp, region, service string) string {
	return strings.Join([]string{dateStamp, region, service, ScopeTerminator}, "/")
}

func hmacSHA256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}

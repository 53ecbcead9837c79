// Package sign implements the gateway's MD5 parameter signature. The
// concatenation and hashing must match the gateway's own computation
// byte for byte: filter sign/sign_type and empty values, sort keys,
// join as k=v&..., append the merchant key, lowercase hex MD5.
package sign

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strings"
)

var (
	ErrMissingSignature    = errors.New("missing sign parameter")
	ErrUnsupportedSignType = errors.New("unsupported sign_type")
	ErrSignatureMismatch   = errors.New("signature mismatch")
)

func Sign(params map[string]string, key string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if k == "sign" || k == "sign_type" || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	b.WriteString(key)

	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the signature over received callback parameters and
// compares it with the sign parameter they carry.
func Verify(params map[string]string, key string) error {
	received := params["sign"]
	if received == "" {
		return ErrMissingSignature
	}
	if st := params["sign_type"]; st != "" && !strings.EqualFold(st, "MD5") {
		return ErrUnsupportedSignType
	}
	if Sign(params, key) != received {
		return ErrSignatureMismatch
	}
	return nil
}

// FromQuery flattens query parameters to the single-valued map the
// signature is defined over. Repeated keys keep their first value.
func FromQuery(values url.Values) map[string]string {
	params := make(map[string]string, len(values))
	for k := range values {
		params[k] = values.Get(k)
	}
	return params
}

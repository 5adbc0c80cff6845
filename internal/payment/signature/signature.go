package signature

import (
	"bytes"
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"tgpay/internal/structs"
)

type Scheme string

const (
	// SchemeSHA1MD5 is sha1(md5(upper(number + amount + currency + description + secret))).
	SchemeSHA1MD5 Scheme = "sha1md5"
	// SchemeHMAC is hex(hmac-sha256(secret, json(payload with the hash field blanked))).
	SchemeHMAC Scheme = "hmac"
)

func ParseScheme(raw string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(raw))) {
	case "", SchemeSHA1MD5:
		return SchemeSHA1MD5, nil
	case SchemeHMAC:
		return SchemeHMAC, nil
	default:
		return "", fmt.Errorf("unknown signature scheme %q", raw)
	}
}

// HexLen is the length of a hex-encoded digest of this scheme.
func (s Scheme) HexLen() int {
	if s == SchemeHMAC {
		return sha256.Size * 2
	}
	return sha1.Size * 2
}

// Fields are the canonical order fields the digest chain covers.
type Fields struct {
	OrderNumber string
	Amount      string
	Currency    string
	Description string
}

var (
	orderNumberStrip = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	amountStrip      = regexp.MustCompile(`[^0-9.]`)
	currencyStrip    = regexp.MustCompile(`[^a-zA-Z]`)
	// whitespace as the gateway counts it, which includes \v and unicode spaces
	descriptionStrip = regexp.MustCompile(`[^\w\t\n\v\f\r \p{Zs}\x{2028}\x{2029}\x{FEFF}.,!?-]`)
	hexRegexp        = regexp.MustCompile(`^[a-fA-F0-9]+$`)
)

// Sanitize drops characters the gateway strips before hashing.
func (f Fields) Sanitize() Fields {
	return Fields{
		OrderNumber: orderNumberStrip.ReplaceAllString(f.OrderNumber, ""),
		Amount:      amountStrip.ReplaceAllString(f.Amount, ""),
		Currency:    strings.ToUpper(currencyStrip.ReplaceAllString(f.Currency, "")),
		Description: descriptionStrip.ReplaceAllString(f.Description, ""),
	}
}

func (f Fields) validate() error {
	if f.OrderNumber == "" || f.Amount == "" || f.Currency == "" || f.Description == "" {
		return &structs.SignatureError{Reason: "missing required order fields"}
	}
	return nil
}

// SHA1MD5 computes the order digest. The chain is fixed by the gateway and must not change.
func SHA1MD5(f Fields, secret string) (string, error) {
	if secret == "" {
		return "", &structs.ConfigurationError{Key: "gateway password"}
	}
	if err := f.validate(); err != nil {
		return "", err
	}

	s := f.Sanitize()
	upper := strings.ToUpper(s.OrderNumber + s.Amount + s.Currency + s.Description + secret)

	md5Sum := md5.Sum([]byte(upper))
	sha1Sum := sha1.Sum([]byte(hex.EncodeToString(md5Sum[:])))
	return hex.EncodeToString(sha1Sum[:]), nil
}

func HMACSHA256(data []byte, secret string) (string, error) {
	if secret == "" {
		return "", &structs.ConfigurationError{Key: "gateway password"}
	}
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SignPayload serializes payload and signs it with SchemeHMAC. The caller passes the payload with
// its hash field already empty.
func SignPayload(payload any, secret string) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return HMACSHA256(b, secret)
}

// BlankField returns body with the value of the top-level field replaced by "". Every other byte
// is kept as received, so the result is what the sender signed. A body without the field is
// returned unchanged.
func BlankField(body []byte, field string) ([]byte, error) {
	notObject := &structs.SignatureError{Reason: "body is not a json object"}

	dec := json.NewDecoder(bytes.NewReader(body))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, notObject
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, notObject
		}
		key, _ := tok.(string)
		afterKey := int(dec.InputOffset())

		var skip json.RawMessage
		if err = dec.Decode(&skip); err != nil {
			return nil, notObject
		}
		if key != field {
			continue
		}

		start := valueStart(body, afterKey)
		end := int(dec.InputOffset())
		out := make([]byte, 0, len(body)-(end-start)+2)
		out = append(out, body[:start]...)
		out = append(out, `""`...)
		return append(out, body[end:]...), nil
	}
	return body, nil
}

// valueStart skips the whitespace and colon between a member name ending at i and its value.
func valueStart(body []byte, i int) int {
	for i < len(body) {
		switch body[i] {
		case ' ', '\t', '\n', '\r', ':':
			i++
		default:
			return i
		}
	}
	return i
}

// MD5Hex is the lowercase hex md5 of s.
func MD5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Verify compares a received hex signature with the expected one in constant time. Malformed or
// wrongly sized input is rejected before any comparison.
func Verify(expected, received string, size int) error {
	received = strings.TrimSpace(received)
	if received == "" {
		return &structs.SignatureError{Reason: "missing signature"}
	}
	if len(received) != size || !hexRegexp.MatchString(received) {
		return &structs.SignatureError{Reason: "malformed signature"}
	}
	if len(expected) != size {
		return &structs.SignatureError{Reason: "expected signature has wrong size"}
	}

	got, err := hex.DecodeString(strings.ToLower(received))
	if err != nil {
		return &structs.SignatureError{Reason: "malformed signature"}
	}
	want, err := hex.DecodeString(expected)
	if err != nil {
		return &structs.SignatureError{Reason: "expected signature is not hex"}
	}
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return &structs.SignatureError{Reason: "signature mismatch"}
	}
	return nil
}

package decode

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/quotedprintable"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// ErrDecode marks payloads that cannot be transformed into text.
var ErrDecode = errors.New("undecodable payload")

// Decode turns a base64url transport payload into readable text.
// The body is quoted-printable encoded (declared by the message's
// Content-Transfer-Encoding header, so it is not re-checked here) and
// its charset is detected heuristically. Detection can still leave
// punctuation such as bullet glyphs rendered as mojibake; that is
// tolerated, not corrected.
func Decode(raw string) (string, error) {
	payload, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		// Gmail omits padding on raw payloads.
		payload, err = base64.RawURLEncoding.DecodeString(raw)
		if err != nil {
			return "", fmt.Errorf("%w: base64: %v", ErrDecode, err)
		}
	}

	body, err := io.ReadAll(quotedprintable.NewReader(bytes.NewReader(payload)))
	if err != nil && len(body) == 0 {
		return "", fmt.Errorf("%w: quoted-printable: %v", ErrDecode, err)
	}

	candidates, err := DetectCharset(body)
	if err != nil {
		return "", err
	}

	enc, err := htmlindex.Get(strings.ToLower(candidates[0].Charset))
	if err != nil {
		return "", fmt.Errorf("%w: charset %s: %v", ErrDecode, candidates[0].Charset, err)
	}
	text, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", fmt.Errorf("%w: decoding as %s: %v", ErrDecode, candidates[0].Charset, err)
	}
	// Mail transports use CRLF line endings; extraction works on LF.
	return strings.ReplaceAll(string(text), "\r\n", "\n"), nil
}

// Package names canonicalizes group, case, parameter and channel identities for use in
// output paths and identifiers.
//
// Escaping is percent-encoding over a conservative set of characters that are safe in
// file names on every common filesystem and in URL path segments. It is not idempotent:
// escaping an already escaped value encodes its '%' again (a space becomes "%20" once and
// "%2520" twice). The Escaped type exists so that APIs deriving paths accept only values
// that went through Escape exactly once.
package names

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrMalformedEscape is returned by Unescape for invalid percent sequences.
var ErrMalformedEscape = errors.New("malformed escape sequence")

// safeChars are the bytes kept as-is by Escape.
const safeChars = "!+-" +
	"0123456789" +
	"@" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"^_" +
	"abcdefghijklmnopqrstuvwxyz" +
	"{}~"

const hexChars = "0123456789ABCDEF"

// safeTable marks the bytes in safeChars.
var safeTable = func() (table [256]bool) {
	for i := 0; i < len(safeChars); i++ {
		table[safeChars[i]] = true
	}
	return table
}()

// Escaped is an identity that has been percent-escaped exactly once.
type Escaped string

// String returns the escaped form.
func (e Escaped) String() string {
	return string(e)
}

// Escape percent-escapes every byte of raw that is not a safe file name character.
func Escape(raw string) Escaped {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if safeTable[c] {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hexChars[c>>4])
		b.WriteByte(hexChars[c&0xF])
	}
	return Escaped(b.String())
}

// Unescape reverses Escape.
func Unescape(e Escaped) (string, error) {
	s := string(e)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			b.WriteByte(s[i])
			continue
		}
		if i+2 >= len(s) {
			return "", errors.Wrapf(ErrMalformedEscape, "truncated sequence at offset %d in %q", i, s)
		}
		hi, okHi := fromHex(s[i+1])
		lo, okLo := fromHex(s[i+2])
		if !okHi || !okLo {
			return "", errors.Wrapf(ErrMalformedEscape, "invalid hex at offset %d in %q", i, s)
		}
		b.WriteByte(hi<<4 | lo)
		i += 2
	}
	return b.String(), nil
}

// Path joins escaped components with '/'. Empty components are skipped.
func Path(parts ...Escaped) string {
	elems := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			elems = append(elems, string(p))
		}
	}
	return strings.Join(elems, "/")
}

func fromHex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	}
	return 0, false
}

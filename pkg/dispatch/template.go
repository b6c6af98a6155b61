package dispatch

import "strings"

// Substitute fills placeholders in tmpl with values from params.
//
// A placeholder is a "{" followed by a non-empty identifier of letters,
// digits and underscores, closed by "}". Any other brace sequence,
// including a lone "{", "{}" or "{not-an-ident}", is copied through as
// literal text. A placeholder whose name is absent from params fails with
// MissingParameterError rather than expanding to an empty string.
// Substituted values are never re-scanned for further placeholders.
func Substitute(tmpl string, params Params) (string, error) {
	sb := &strings.Builder{}
	sb.Grow(len(tmpl))

	for i := 0; i < len(tmpl); {
		if tmpl[i] != '{' {
			sb.WriteByte(tmpl[i])
			i++
			continue
		}

		j := i + 1
		for j < len(tmpl) && isIdent(tmpl[j]) {
			j++
		}

		// not a well-formed {identifier} token, the brace is literal
		if j == i+1 || j == len(tmpl) || tmpl[j] != '}' {
			sb.WriteByte(tmpl[i])
			i++
			continue
		}

		name := tmpl[i+1 : j]
		val, ok := params[name]
		if !ok {
			return "", &MissingParameterError{Name: name}
		}

		sb.WriteString(val)
		i = j + 1
	}

	return sb.String(), nil
}

func isIdent(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '_'
}

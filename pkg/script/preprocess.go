package script

// Source preprocessing before zygomys sees the script:
//
//   - ';' line comments become '//' (zygomys has no Lisp-style comments)
//   - kebab-case identifiers become underscore form (move-node becomes
//     move_node; zygomys parses '-' as subtraction)
//   - :keyword tokens become "__kw_keyword" string literals so builtins
//     can take keyword arguments without registering global symbols
//
// String literals are left untouched.

// kwPrefix marks a preprocessed keyword string.
const kwPrefix = "__kw_"

func preprocess(source string) string {
	src := []byte(source)
	out := make([]byte, 0, len(src)+len(src)/8)

	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '"' || c == '`':
			// Copy the whole literal verbatim, honoring backslash
			// escapes inside double quotes only.
			quote := c
			out = append(out, c)
			i++
			for i < len(src) && src[i] != quote {
				if quote == '"' && src[i] == '\\' && i+1 < len(src) {
					out = append(out, src[i], src[i+1])
					i += 2
					continue
				}
				out = append(out, src[i])
				i++
			}
			if i < len(src) {
				out = append(out, quote)
				i++
			}

		case c == ';':
			out = append(out, '/', '/')
			for i < len(src) && src[i] == ';' {
				i++
			}
			for i < len(src) && src[i] != '\n' {
				out = append(out, src[i])
				i++
			}

		case c == ':' && i+1 < len(src) && isAlpha(src[i+1]):
			j := i + 1
			for j < len(src) && isKeywordChar(src[j]) {
				j++
			}
			out = append(out, '"')
			out = append(out, kwPrefix...)
			for _, kc := range src[i+1 : j] {
				if kc == '-' {
					kc = '_'
				}
				out = append(out, kc)
			}
			out = append(out, '"')
			i = j

		case c == '-' && i > 0 && i+1 < len(src) && isIdentChar(src[i-1]) && isAlpha(src[i+1]):
			out = append(out, '_')
			i++

		default:
			out = append(out, c)
			i++
		}
	}
	return string(out)
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKeywordChar(c byte) bool {
	return isAlpha(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isAlpha(c) || (c >= '0' && c <= '9') || c == '_'
}

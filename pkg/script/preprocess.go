package script

// kwPrefix marks keyword arguments after preprocessing: :base becomes the
// string literal "__kw_base".
const kwPrefix = "__kw_"

// preprocessSource rewrites prism DSL source into something zygomys reads:
//
//   - :keyword becomes the string "__kw_keyword", so keywords need no
//     global symbols and cannot collide with user variables.
//   - kebab-case identifiers become snake_case (aux-point -> aux_point);
//     zygomys would read the hyphen as subtraction.
//   - ; comments become // comments.
//
// String literals ("..." and `...`) pass through untouched. A hyphen is
// only rewritten between an identifier character and a letter, so (- a b)
// and negative numbers survive.
func preprocessSource(source string) string {
	s := scanner{src: []byte(source)}
	s.out = make([]byte, 0, len(source)+len(source)/4)
	for s.i < len(s.src) {
		switch c := s.src[s.i]; {
		case c == '"':
			s.quoted('"', true)
		case c == '`':
			s.quoted('`', false)
		case c == ';':
			s.comment()
		case c == ':' && s.i+1 < len(s.src) && s.src[s.i+1] == '=':
			s.copyN(2)
		case c == ':' && s.i+1 < len(s.src) && isLetter(s.src[s.i+1]):
			s.keyword()
		case c == '-' && s.i > 0 && s.i+1 < len(s.src) &&
			isIdentChar(s.src[s.i-1]) && isLetter(s.src[s.i+1]):
			s.out = append(s.out, '_')
			s.i++
		default:
			s.copyN(1)
		}
	}
	return string(s.out)
}

type scanner struct {
	src []byte
	out []byte
	i   int
}

func (s *scanner) copyN(n int) {
	end := min(s.i+n, len(s.src))
	s.out = append(s.out, s.src[s.i:end]...)
	s.i = end
}

// quoted copies a literal delimited by q, honoring backslash escapes when
// escapes is set.
func (s *scanner) quoted(q byte, escapes bool) {
	s.copyN(1)
	for s.i < len(s.src) && s.src[s.i] != q {
		if escapes && s.src[s.i] == '\\' {
			s.copyN(2)
			continue
		}
		s.copyN(1)
	}
	s.copyN(1)
}

func (s *scanner) comment() {
	s.out = append(s.out, '/', '/')
	for s.i < len(s.src) && s.src[s.i] == ';' {
		s.i++
	}
	for s.i < len(s.src) && s.src[s.i] != '\n' {
		s.copyN(1)
	}
}

func (s *scanner) keyword() {
	j := s.i + 1
	for j < len(s.src) && isKWChar(s.src[j]) {
		j++
	}
	s.out = append(s.out, '"')
	s.out = append(s.out, kwPrefix...)
	s.out = append(s.out, s.src[s.i+1:j]...)
	s.out = append(s.out, '"')
	s.i = j
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isIdentChar(c) || c == '-'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

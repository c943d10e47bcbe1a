package nftptr

const upperhex = "0123456789ABCDEF"

// PercentEncode escapes every byte outside [A-Za-z0-9] as %XX.
// It is stricter than url.QueryEscape, which leaves "-_.~" alone and turns
// spaces into "+".
func PercentEncode(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !isAlphanumeric(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	buf := make([]byte, 0, len(s)+2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAlphanumeric(c) {
			buf = append(buf, c)
			continue
		}
		buf = append(buf, '%', upperhex[c>>4], upperhex[c&15])
	}
	return string(buf)
}

func isAlphanumeric(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

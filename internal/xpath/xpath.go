// Package xpath implements longest-match resolution of YANG-style instance
// paths against a registered set of glob patterns.
//
// Patterns and instance paths are tokenized into segments split on '/',
// except inside a bracketed key predicate ("[...]"), where an embedded '/'
// (for example inside a quoted prefix like "10.0.0.0/24") does not count as
// a segment boundary. A trailing "*" segment marks a pattern as matching
// any suffix beyond that point; on an instance path it is dropped. A "*"
// segment elsewhere on either side matches any one segment.
package xpath

import "strings"

// RootScope reports whether path is one of the two special root-scope
// instance paths ("/" or "/*"), which match every registered pattern
// unconditionally.
func RootScope(path string) bool {
	return path == "/" || path == "/*"
}

// Segments splits path into its '/'-delimited segments, respecting bracket
// nesting so an embedded '/' inside a "[key='value']" predicate does not
// split the segment it belongs to. Leading and trailing empty segments
// (from a leading or trailing '/') are dropped.
func Segments(path string) []string {
	var segs []string
	var cur strings.Builder
	depth := 0

	flush := func() {
		if cur.Len() > 0 {
			segs = append(segs, cur.String())
			cur.Reset()
		}
	}

	for _, r := range path {
		switch r {
		case '[':
			depth++
			cur.WriteRune(r)
		case ']':
			if depth > 0 {
				depth--
			}
			cur.WriteRune(r)
		case '/':
			if depth == 0 {
				flush()
				continue
			}
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return segs
}

// trimTrailingWildcard drops a lone trailing "*" segment, reporting whether
// one was present.
func trimTrailingWildcard(segs []string) ([]string, bool) {
	if len(segs) == 0 {
		return segs, false
	}
	if segs[len(segs)-1] == "*" {
		return segs[:len(segs)-1], true
	}
	return segs, false
}

// MatchLength computes the longest-match length of pattern against
// instance, in segments. A return of 0 means no match.
//
// A trailing "*" on either side is trimmed before comparison; a "*" segment
// elsewhere on either side matches the segment opposite it. Any literal
// segment mismatch (neither side a wildcard) fails the whole match — there
// is no partial credit for a common prefix that then diverges, since that
// would let a shorter, unrelated pattern tie with a properly-prefixed
// longer one.
func MatchLength(pattern, instance string) int {
	pSegs, pWild := trimTrailingWildcard(Segments(pattern))
	iSegs, _ := trimTrailingWildcard(Segments(instance))

	if len(pSegs) == 0 || len(iSegs) == 0 {
		return 0
	}

	if !pWild && len(pSegs) != len(iSegs) {
		return 0
	}
	if len(pSegs) > len(iSegs) {
		return 0
	}

	for i, seg := range pSegs {
		if seg == iSegs[i] || seg == "*" || iSegs[i] == "*" {
			continue
		}
		return 0
	}
	return len(pSegs)
}

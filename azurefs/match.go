package azurefs

import "path"

// MatchSegments reports whether the blob key segments match the pattern
// segments. Non-recursive pattern segments use shell glob semantics
// (`*`, `?`, character classes) against exactly one key segment; a
// pattern segment of "**" matches any number of whole key segments,
// including none. The match succeeds only when both sequences are
// consumed together.
//
// The search backtracks on "**", so repeated recursive segments are
// exponential in the worst case; typical blob path depths keep it cheap.
func MatchSegments(key, pattern []string) bool {
	if len(pattern) == 0 {
		return len(key) == 0
	}
	if pattern[0] == "**" {
		// A trailing ** absorbs everything that is left.
		if len(pattern) == 1 {
			return true
		}
		for i := 0; i <= len(key); i++ {
			if MatchSegments(key[i:], pattern[1:]) {
				return true
			}
		}
		return false
	}
	if len(key) == 0 {
		return false
	}
	// path.Match is single-segment shell glob: wildcards never cross a
	// separator, which is exactly the per-segment contract here. A
	// malformed pattern simply does not match.
	if ok, err := path.Match(pattern[0], key[0]); err != nil || !ok {
		return false
	}
	return MatchSegments(key[1:], pattern[1:])
}

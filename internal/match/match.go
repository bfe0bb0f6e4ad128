// Package match implements the restricted glob matching used for per-directory
// exclusion patterns. A pattern applies to a single path segment: '*' matches
// zero or more characters, '?' matches exactly one, every other character
// (including '.') matches literally. Patterns are anchored at both ends.
package match

// Matches reports whether name matches any of the given patterns.
// An empty pattern list matches nothing.
func Matches(name string, patterns []string) bool {
	for _, p := range patterns {
		if matchOne(name, p) {
			return true
		}
	}
	return false
}

// matchOne matches a single anchored pattern against name.
// filepath.Match is not used here: it treats '[' as a character class and
// '\\' as an escape, neither of which exists in the exclusion grammar.
func matchOne(name, pattern string) bool {
	// Iterative backtracking over the last '*' seen, same shape as the
	// classic wildcard match.
	var ni, pi int
	starPi, starNi := -1, 0
	for ni < len(name) {
		switch {
		case pi < len(pattern) && pattern[pi] == '*':
			starPi, starNi = pi, ni
			pi++
		case pi < len(pattern) && (pattern[pi] == '?' || pattern[pi] == name[ni]):
			pi++
			ni++
		case starPi >= 0:
			// Backtrack: let the last '*' absorb one more character.
			starNi++
			ni = starNi
			pi = starPi + 1
		default:
			return false
		}
	}
	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return pi == len(pattern)
}

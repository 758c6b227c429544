package callgraph

import "strings"

// candidateImplNames returns the implementation class names a caller
// should try for interface ifaceName, per spec §4.6 rule 5: IFoo <-> FooImpl,
// IFoo + Impl, or strip-leading-I + Impl. Order matters: the first match
// found in the index wins.
func candidateImplNames(ifaceName string) []string {
	candidates := []string{ifaceName + "Impl"}

	if strings.HasPrefix(ifaceName, "I") && len(ifaceName) > 1 && isUpper(ifaceName[1]) {
		stripped := ifaceName[1:]
		candidates = append(candidates, stripped+"Impl")
	}

	if strings.HasSuffix(ifaceName, "SVC") {
		candidates = append(candidates, ifaceName+"Impl")
	}

	return dedupeStrings(candidates)
}

func isUpper(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

package xmlmapper

import (
	"regexp"
	"strings"
)

// DynamicSqlResolver statically flattens a MyBatis dynamic-SQL body into a
// single SQL string, per the rules in spec §4.4. It never evaluates a
// <test> expression: every <if> is taken, and every <choose> takes its
// first <when> (falling back to <otherwise>). The flattened SQL therefore
// contains every <if> body; later <when> branches of a <choose> are not
// included.
type DynamicSqlResolver struct {
	fragments map[string]*node
}

func newResolver(fragments map[string]*node) *DynamicSqlResolver {
	return &DynamicSqlResolver{fragments: fragments}
}

// Resolve flattens n's body into a whitespace-collapsed SQL string.
func (r *DynamicSqlResolver) Resolve(n *node) string {
	active := make(map[string]bool)
	flat := r.flatten(n, active)
	return collapseWhitespace(flat)
}

func (r *DynamicSqlResolver) flatten(n *node, active map[string]bool) string {
	var out strings.Builder
	for _, p := range n.parts {
		if p.isText {
			out.WriteString(p.text)
			continue
		}
		out.WriteString(r.flattenChild(p.child, active))
	}
	return out.String()
}

func (r *DynamicSqlResolver) flattenChild(child *node, active map[string]bool) string {
	switch child.tag {
	case "include":
		refid, _ := child.attr("refid")
		if refid == "" || active[refid] {
			return "" // missing refid or cycle: contribute nothing rather than loop forever
		}
		frag, ok := r.fragments[refid]
		if !ok {
			return ""
		}
		active[refid] = true
		body := r.flatten(frag, active)
		delete(active, refid)
		return body

	case "if":
		return r.flatten(child, active)

	case "choose":
		if when := child.firstChild("when"); when != nil {
			return r.flatten(when, active)
		}
		if otherwise := child.firstChild("otherwise"); otherwise != nil {
			return r.flatten(otherwise, active)
		}
		return ""

	case "foreach":
		open, _ := child.attr("open")
		close_, _ := child.attr("close")
		body := r.flatten(child, active)
		return open + " " + body + " " + close_

	case "where":
		body := r.flatten(child, active)
		return "WHERE " + stripLeadingAndOr(body)

	case "set":
		body := r.flatten(child, active)
		return "SET " + stripTrailingComma(body)

	case "trim":
		prefix, _ := child.attr("prefix")
		suffix, _ := child.attr("suffix")
		prefixOverrides, _ := child.attr("prefixOverrides")
		suffixOverrides, _ := child.attr("suffixOverrides")
		body := strings.TrimSpace(r.flatten(child, active))
		body = stripAnyPrefix(body, splitOverrides(prefixOverrides))
		body = stripAnySuffix(body, splitOverrides(suffixOverrides))
		if body == "" {
			return ""
		}
		var b strings.Builder
		if prefix != "" {
			b.WriteString(prefix)
			b.WriteString(" ")
		}
		b.WriteString(body)
		if suffix != "" {
			b.WriteString(" ")
			b.WriteString(suffix)
		}
		return b.String()

	default:
		// Unknown/static element (e.g. a stray <sql> reference, <bind>):
		// pass its text content through rather than dropping it silently.
		return r.flatten(child, active)
	}
}

var leadingAndOrRe = regexp.MustCompile(`(?i)^\s*(AND|OR)\s+`)

func stripLeadingAndOr(s string) string {
	trimmed := strings.TrimSpace(s)
	return leadingAndOrRe.ReplaceAllString(trimmed, "")
}

func stripTrailingComma(s string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(s), " \t\n")
	return strings.TrimSuffix(trimmed, ",")
}

func splitOverrides(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

func stripAnyPrefix(s string, candidates []string) string {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if strings.HasPrefix(strings.ToUpper(s), strings.ToUpper(c)) {
			return strings.TrimSpace(s[len(c):])
		}
	}
	return s
}

func stripAnySuffix(s string, candidates []string) string {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if strings.HasSuffix(strings.ToUpper(s), strings.ToUpper(c)) {
			return strings.TrimSpace(s[:len(s)-len(c)])
		}
	}
	return s
}

var whitespaceRe = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

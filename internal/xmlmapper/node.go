// Package xmlmapper parses MyBatis mapper XML and statically flattens its
// dynamic-SQL tags into a superset SQL string suitable for table/column
// extraction, per spec §4.4. Flattening is not evaluation: every <if> is
// considered reachable and a <choose> contributes its first <when> (or its
// <otherwise>), so <if> bodies over-report rather than under-report which
// columns a query can touch.
package xmlmapper

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// part is one piece of a node's mixed content, in document order: either a
// run of character data or a child element. encoding/xml's struct-tag
// unmarshaling collapses interleaved text and elements, which is exactly
// the ordering the flattening rules in spec §4.4 depend on (e.g. <where>
// needs to see the literal "AND"/"OR" token immediately following a
// child's output) — so mapper bodies are parsed directly against the
// token stream instead.
type part struct {
	isText bool
	text   string
	child  *node
}

// node is one XML element, preserving attributes and ordered mixed content.
type node struct {
	tag   string
	attrs map[string]string
	parts []part
}

func (n *node) attr(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

// parseRoot decodes src and returns its root element (the <mapper> node)
// with its full subtree.
func parseRoot(src []byte) (*node, error) {
	dec := xml.NewDecoder(strings.NewReader(string(src)))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("no root element found")
		}
		if err != nil {
			return nil, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return parseElement(dec, start)
		}
	}
}

func parseElement(dec *xml.Decoder, start xml.StartElement) (*node, error) {
	n := &node{
		tag:   start.Name.Local,
		attrs: make(map[string]string, len(start.Attr)),
	}
	for _, a := range start.Attr {
		n.attrs[a.Name.Local] = a.Value
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return n, nil
			}
			return nil, err
		}

		switch t := tok.(type) {
		case xml.CharData:
			n.parts = append(n.parts, part{isText: true, text: string(t)})
		case xml.StartElement:
			child, err := parseElement(dec, t)
			if err != nil {
				return nil, err
			}
			n.parts = append(n.parts, part{child: child})
		case xml.EndElement:
			if t.Name.Local == start.Name.Local {
				return n, nil
			}
		}
	}
}

// children returns the child elements named tag, in document order.
func (n *node) children(tag string) []*node {
	var out []*node
	for _, p := range n.parts {
		if p.child != nil && p.child.tag == tag {
			out = append(out, p.child)
		}
	}
	return out
}

func (n *node) firstChild(tag string) *node {
	for _, p := range n.parts {
		if p.child != nil && p.child.tag == tag {
			return p.child
		}
	}
	return nil
}

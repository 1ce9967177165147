package roundtrip

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CheckBytes round-trips a native document given as bytes. The original bytes
// and the rendering of the re-encoded value are both read into generic trees,
// so native fields the typed parse never modeled are violations rather than
// vanishing from both sides.
func CheckBytes[T, C any](
	original []byte,
	parse func([]byte) (T, error),
	toCanonical func(T) (C, error),
	fromCanonical func(C) (T, error),
	render func(T) ([]byte, error),
	tree func([]byte) (any, error),
	policy Policy,
) (*Report, error) {
	parsed, err := parse(original)
	if err != nil {
		return nil, err
	}
	canonical, err := toCanonical(parsed)
	if err != nil {
		return nil, fmt.Errorf("to canonical: %w", err)
	}
	reencoded, err := fromCanonical(canonical)
	if err != nil {
		return nil, fmt.Errorf("from canonical: %w", err)
	}
	out, err := render(reencoded)
	if err != nil {
		return nil, fmt.Errorf("rendering re-encoded: %w", err)
	}

	a, err := tree(original)
	if err != nil {
		return nil, fmt.Errorf("reading original: %w", err)
	}
	b, err := tree(out)
	if err != nil {
		return nil, fmt.Errorf("reading re-encoded: %w", err)
	}
	return Compare(a, b, policy)
}

// JSONTree decodes a JSON document into generic maps and slices.
func JSONTree(data []byte) (any, error) {
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// Keys XMLTree adds next to element and attribute names.
const (
	xmlText     = "#text"
	xmlSequence = "#sequence"
)

type xmlNode struct {
	name     string
	attrs    []xml.Attr
	children []*xmlNode
	text     strings.Builder
}

// XMLTree reads an XML document into nested maps keyed the way JSON field
// names are: local names with the first letter lowered, attributes prefixed
// with "@". Siblings sharing a name become an array in document order, and an
// element with repeated children gets a "#sequence" leaf naming its children
// in order. Text that parses as a number becomes a number. Namespace
// declarations, comments and whitespace-only text are ignored.
func XMLTree(data []byte) (any, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var root *xmlNode
	var stack []*xmlNode
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &xmlNode{name: t.Name.Local}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
					continue
				}
				n.attrs = append(n.attrs, a)
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			} else if root == nil {
				root = n
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}
	if root == nil {
		return nil, errors.New("no root element")
	}
	return map[string]any{lowerFirst(root.name): root.value()}, nil
}

func (n *xmlNode) value() any {
	text := strings.TrimSpace(n.text.String())
	if len(n.attrs) == 0 && len(n.children) == 0 {
		return scalar(text)
	}

	out := map[string]any{}
	for _, a := range n.attrs {
		out["@"+lowerFirst(a.Name.Local)] = scalar(a.Value)
	}
	if text != "" {
		out[xmlText] = scalar(text)
	}

	counts := map[string]int{}
	for _, c := range n.children {
		counts[c.name]++
	}
	repeated := false
	for _, c := range n.children {
		key := lowerFirst(c.name)
		if counts[c.name] == 1 {
			out[key] = c.value()
			continue
		}
		repeated = true
		list, _ := out[key].([]any)
		out[key] = append(list, c.value())
	}
	if repeated {
		names := make([]string, len(n.children))
		for i, c := range n.children {
			names[i] = c.name
		}
		out[xmlSequence] = strings.Join(names, ",")
	}
	return out
}

// scalar turns numeric text into a float64 so tolerances apply to it.
func scalar(s string) any {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return s
	}
	return f
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

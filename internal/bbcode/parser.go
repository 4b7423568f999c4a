package bbcode

import (
	"slices"
	"strings"

	"github.com/gerunddev/markbridge/internal/tree"
	"golang.org/x/text/cases"
)

// Parse converts BBCode into a markup tree. The first error aborts the
// parse and is returned as *Error.
func Parse(input string) (*tree.Document, error) {
	root, err := ParseTree(input)
	if err != nil {
		return nil, err
	}

	b := tree.New()
	if err := root.buildContent(b); err != nil {
		return nil, err
	}
	return b.Build(), nil
}

// ParseTree nests the fragments of input into intermediate nodes. Open
// tags are kept on an explicit stack, so nesting depth is bounded by
// memory rather than the call stack.
func ParseTree(input string) (*Node, error) {
	// a Caser keeps state, so each parse gets its own
	fold := cases.Fold()

	root := newRoot()
	stack := []*Node{root}
	var lastVoid *NodeTag

	for f := range Tokenize(input).All() {
		top := stack[len(stack)-1]
		prevVoid := lastVoid
		lastVoid = nil

		switch f.Kind {
		case TextFragment:
			top.putText(f.Value, f.Range)

		case StartTagFragment:
			tag := &NodeTag{
				Name:       fold.String(f.Value),
				NameRange:  f.Range,
				Params:     ParseParams(f.Params, f.ParamRange),
				ParamRange: f.ParamRange,
			}
			if err := admit(top.Tag, tag); err != nil {
				return nil, err
			}

			node := &Node{Tag: tag}
			top.putNode(node)
			if tag.spec.void {
				lastVoid = tag
				continue
			}
			stack = append(stack, node)

		case EndTagFragment:
			name := fold.String(f.Value)
			switch {
			case prevVoid != nil && prevVoid.Name == name:
				// [hr][/hr] closes nothing
			case top.Tag == nil:
				return nil, unopenedTag(name, f.Range)
			case top.Tag.Name != name:
				return nil, unclosedTag(top.Tag)
			default:
				stack = stack[:len(stack)-1]
			}
		}
	}

	if len(stack) > 1 {
		return nil, unclosedTag(stack[len(stack)-1].Tag)
	}
	return root, nil
}

// admit resolves the handler of tag and checks that it may open inside
// parent, which is nil at the document root.
func admit(parent, tag *NodeTag) error {
	if parent != nil && parent.spec.verbatim != nil && parent.spec.verbatim(parent) {
		return unexpectedTag(parent, tag)
	}

	spec, ok := registry[tag.Name]
	if !ok {
		return unknownTag(tag.Name, tag.NameRange)
	}
	tag.spec = spec

	if len(spec.parents) > 0 && (parent == nil || !slices.Contains(spec.parents, parent.Name)) {
		return misplacedTag(tag.Name, tag.NameRange, strings.Join(spec.parents, ", "))
	}
	if parent != nil && len(parent.spec.children) > 0 && !slices.Contains(parent.spec.children, tag.Name) {
		return unexpectedTag(parent, tag)
	}
	// phrasing parents are checked at every level, so a block tag can
	// never end up below one
	if parent != nil && spec.block && parent.spec.phrasing {
		return misplacedTag(tag.Name, tag.NameRange, "")
	}
	return nil
}

package bbcode

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gerunddev/markbridge/internal/mdtext"
	"github.com/gerunddev/markbridge/internal/tree"
)

// itemMarker starts a new list item in the shorthand form [list][*]a[*]b[/list]
const itemMarker = "[*]"

var errListStyle = errors.New("expected a start number or one of a, A, i, I")

// piece is part of the content of a list item or table cell: a run of
// text or a tagged node.
type piece struct {
	text string
	node *Node
}

func (p piece) blank() bool {
	if p.node != nil {
		return false
	}
	return strings.TrimSpace(p.text) == ""
}

// pieces builds a sequence of pieces, trimming the whitespace around it.
func pieces(ps []piece) tree.BuildFunc {
	return func(b *tree.Builder) error {
		for i, p := range ps {
			if p.node != nil {
				if err := p.node.build(b); err != nil {
					return err
				}
				continue
			}
			text := p.text
			if i == 0 {
				text = strings.TrimLeft(text, " \t\r\n")
			}
			if i == len(ps)-1 {
				text = strings.TrimRight(text, " \t\r\n")
			}
			if text == "" {
				continue
			}
			if err := b.Text(mdtext.Escape(text)); err != nil {
				return err
			}
		}
		return nil
	}
}

func piecesOf(n *Node) []piece {
	var ps []piece
	for _, c := range n.Children() {
		if c.Tag == nil {
			ps = append(ps, piece{text: c.Inner.text})
		} else {
			ps = append(ps, piece{node: c})
		}
	}
	return ps
}

// listKind reads whether a list tag is ordered and where it starts counting.
func listKind(t *NodeTag) (bool, int, error) {
	value, ok := t.Params.Value()
	if !ok {
		return t.Name == "ol", 1, nil
	}
	if t.Name == "ul" {
		return false, 0, nil
	}
	switch value {
	case "a", "A", "i", "I":
		return true, 1, nil
	}
	start, err := strconv.ParseUint(value, 10, 31)
	if err != nil {
		return false, 0, paramError(ErrParamInvalid, t, "", value, errListStyle)
	}
	return true, int(start), nil
}

func buildList(n *Node, b *tree.Builder) error {
	ordered, start, err := listKind(n.Tag)
	if err != nil {
		return err
	}
	items := listItems(n)
	return b.List(ordered, start, false, func(l *tree.ListBuilder) error {
		for _, item := range items {
			if err := l.Item(pieces(item)); err != nil {
				return err
			}
		}
		return nil
	})
}

// listItems splits the content of a list into items. Text is cut at every
// item marker, li children are items of their own, and other tags join
// the item being collected. Content ahead of the first marker is an item
// too, unless it is blank.
func listItems(n *Node) [][]piece {
	var items [][]piece
	var cur []piece
	flush := func() {
		for _, p := range cur {
			if !p.blank() {
				items = append(items, cur)
				break
			}
		}
		cur = nil
	}

	for _, c := range n.Children() {
		switch {
		case c.Tag == nil:
			for i, part := range strings.Split(c.Inner.text, itemMarker) {
				if i > 0 {
					flush()
				}
				if len(cur) == 0 && strings.TrimSpace(part) == "" {
					continue
				}
				cur = append(cur, piece{text: part})
			}
		case c.Tag.Name == "li":
			flush()
			if !c.blank() {
				items = append(items, piecesOf(c))
			}
		default:
			cur = append(cur, piece{node: c})
		}
	}
	flush()
	return items
}

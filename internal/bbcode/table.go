package bbcode

import "github.com/gerunddev/markbridge/internal/tree"

// buildTable maps tr to rows and td/th to cells. Text between rows and
// cells is layout and is dropped. A row made only of th cells is a header.
func buildTable(n *Node, b *tree.Builder) error {
	return b.Table(func(t *tree.TableBuilder) error {
		for _, row := range n.Children() {
			if row.Tag == nil {
				continue
			}
			cells := tagged(row)
			if err := t.Row(isHeader(cells), func(r *tree.RowBuilder) error {
				for _, cell := range cells {
					if err := r.Cell(pieces(piecesOf(cell))); err != nil {
						return err
					}
				}
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

func tagged(n *Node) []*Node {
	var nodes []*Node
	for _, c := range n.Children() {
		if c.Tag != nil {
			nodes = append(nodes, c)
		}
	}
	return nodes
}

func isHeader(cells []*Node) bool {
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if c.Tag.Name != "th" {
			return false
		}
	}
	return true
}

package bptreemap

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes the tree in pre-order, one node per line, indenting each
// level by a tab:
//
//	[ . 5 . ]
//		[ . 1 . 3 . 5 . ]
//		[ . 7 . 9 . ]
func (m *Map[K, V]) Fprint(w io.Writer) error {
	var b strings.Builder
	m.print(&b, m.root, 0)
	_, err := io.WriteString(w, b.String())
	return err
}

// String returns the Fprint rendering of the tree.
func (m *Map[K, V]) String() string {
	var b strings.Builder
	m.print(&b, m.root, 0)
	return b.String()
}

func (m *Map[K, V]) print(b *strings.Builder, n node[K, V], level int) {
	b.WriteString(strings.Repeat("\t", level))
	b.WriteString("[ .")
	for i := 0; i < n.numKeys(); i++ {
		fmt.Fprintf(b, " %v .", n.keyAt(i))
	}
	b.WriteString(" ]\n")
	if x, ok := n.(*internal[K, V]); ok {
		for _, child := range x.children {
			m.print(b, child, level+1)
		}
	}
}

// WriteDOT writes a Graphviz rendering of the tree. Internal nodes show their
// dividers with one port per child, leaves show their keys, and dashed edges
// follow the leaf chain. Render with: dot -Tpng tree.dot -o tree.png
func (m *Map[K, V]) WriteDOT(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintln(&b, "digraph BPTree {")
	fmt.Fprintln(&b, "  graph [ranksep=0.8, nodesep=0.5, bgcolor=\"#ffffff\", rankdir=TB];")
	fmt.Fprintln(&b, "  node [shape=none, fontname=\"Helvetica\", fontsize=10];")
	fmt.Fprintln(&b, "  edge [arrowsize=0.8, color=\"#444444\"];")

	names := make(map[node[K, V]]string)
	var leafNames []string
	var leaves []*leaf[K, V]

	var exportRec func(n node[K, V]) string
	exportRec = func(n node[K, V]) string {
		name := fmt.Sprintf("node%d", len(names))
		names[n] = name
		fill := 100 * float64(n.numKeys()) / float64(m.order-1)

		switch x := n.(type) {
		case *leaf[K, V]:
			label := fmt.Sprintf(`<<TABLE BORDER="0" CELLBORDER="1" CELLSPACING="0" CELLPADDING="4">
				<TR><TD BGCOLOR="#D5E8D4"><B>LEAF</B><BR/><FONT POINT-SIZE="8">Fill: %.1f%%</FONT></TD></TR>
				<TR><TD PORT="keys" BGCOLOR="#F5F5F5" ALIGN="LEFT">`, fill)
			for _, k := range x.keys {
				label += fmt.Sprintf("<B>%v</B><BR/>", k)
			}
			label += `</TD></TR></TABLE>>`
			fmt.Fprintf(&b, "  %s [label=%s];\n", name, label)
			leafNames = append(leafNames, name)
			leaves = append(leaves, x)

		case *internal[K, V]:
			count := len(x.keys)
			label := fmt.Sprintf(`<<TABLE BORDER="0" CELLBORDER="1" CELLSPACING="0" CELLPADDING="4">
				<TR><TD COLSPAN="%d" BGCOLOR="#DAE8FC"><B>INTERNAL</B><BR/><FONT POINT-SIZE="8">Fill: %.1f%%</FONT></TD></TR><TR>`, count*2+1, fill)
			for i, k := range x.keys {
				label += fmt.Sprintf(`<TD PORT="f%d" BGCOLOR="#E1F5FE"> </TD><TD BGCOLOR="#FFFFFF"><B>%v</B></TD>`, i, k)
			}
			label += fmt.Sprintf(`<TD PORT="f%d" BGCOLOR="#E1F5FE"> </TD></TR></TABLE>>`, count)
			fmt.Fprintf(&b, "  %s [label=%s];\n", name, label)

			for i, child := range x.children {
				fmt.Fprintf(&b, "  %s:f%d -> %s;\n", name, i, exportRec(child))
			}
		}
		return name
	}
	exportRec(m.root)

	if len(leafNames) > 1 {
		fmt.Fprintf(&b, "  { rank=same; %s; }\n", strings.Join(leafNames, "; "))
		for _, l := range leaves {
			if l.next == nil {
				continue
			}
			if target, ok := names[l.next]; ok {
				fmt.Fprintf(&b, "  %s -> %s [style=dashed, color=\"#03A9F4\", constraint=false];\n", names[l], target)
			}
		}
	}

	fmt.Fprintln(&b, "}")
	_, err := io.WriteString(w, b.String())
	return err
}

package extract

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// markdownText walks the Markdown AST and collects the document's text,
// dropping formatting but keeping block boundaries as newlines.
func markdownText(src []byte) string {
	md := goldmark.New()
	doc := md.Parser().Parse(gmtext.NewReader(src))

	var sb strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			sb.Write(node.Segment.Value(src))
			if node.HardLineBreak() || node.SoftLineBreak() {
				sb.WriteString("\n")
			}
		case *ast.CodeBlock:
			writeCodeLines(&sb, node.BaseBlock, src)
		case *ast.FencedCodeBlock:
			writeCodeLines(&sb, node.BaseBlock, src)
		default:
			if n.Type() == ast.TypeBlock && sb.Len() > 0 {
				sb.WriteString("\n")
			}
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(sb.String()) + "\n"
}

func writeCodeLines(sb *strings.Builder, block ast.BaseBlock, src []byte) {
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(src))
	}
}

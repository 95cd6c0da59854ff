package correlation

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	corr "datasense/domain/correlation"
	"datasense/domain/document"
)

// Summary renders a markdown brief of a correlation run. It is the context handed to the
// narrative collaborator and is shown in the UI.
func Summary(result corr.Result, doc *document.Document) string {
	var b strings.Builder

	b.WriteString("## Correlations\n\n")
	if len(result.Correlations) == 0 {
		b.WriteString("No correlations above the reporting thresholds.\n")
	}
	for _, c := range result.Correlations {
		fmt.Fprintf(&b, "- **%s** (%s, %s): %s\n", c.Type, c.Strength, detail(c), c.Description)
	}

	b.WriteString("\n## Insights\n\n")
	if len(result.Insights) == 0 {
		b.WriteString("No insights.\n")
	}
	for _, in := range result.Insights {
		fmt.Fprintf(&b, "- **%s** (confidence %.2f): %s\n", in.Title, in.Confidence, in.Description)
	}

	if doc != nil {
		b.WriteString("\n## Document\n\n")
		if doc.Sentiment != nil {
			fmt.Fprintf(&b, "- Sentiment: %s (%.2f)\n", doc.Sentiment.Overall, doc.Sentiment.Score)
		}
		if len(doc.Themes) > 0 {
			names := make([]string, 0, len(doc.Themes))
			for _, t := range doc.Themes {
				names = append(names, t.Name)
			}
			fmt.Fprintf(&b, "- Themes: %s\n", strings.Join(names, ", "))
		}
		if len(doc.Keywords) > 0 {
			fmt.Fprintf(&b, "- Keywords: %s\n", strings.Join(doc.Keywords, ", "))
		}
		if doc.Summary != "" {
			fmt.Fprintf(&b, "\n> %s\n", doc.Summary)
		}
	}
	return b.String()
}

func detail(c corr.Correlation) string {
	switch {
	case c.Coefficient != nil:
		return fmt.Sprintf("r=%.2f", *c.Coefficient)
	case c.MatchPercentage != nil:
		return fmt.Sprintf("%.1f%% match", *c.MatchPercentage)
	case c.Alignment != "":
		return string(c.Alignment)
	}
	return "-"
}

// SummaryHTML renders Summary as HTML
func SummaryHTML(result corr.Result, doc *document.Document) string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return string(markdown.ToHTML([]byte(Summary(result, doc)), p, renderer))
}

package report

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/iCardioAI/encephalon-examples/pkg/client"
	"github.com/iCardioAI/encephalon-examples/pkg/format"
)

// SummarizeHTML flattens the rendered report pages into plain text,
// one line per page. Scripts and styles are dropped.
func SummarizeHTML(sections []client.ReportHTMLSection) (string, error) {
	parts := []string{}
	for _, section := range sections {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(section.HTML))
		if err != nil {
			return "", err
		}

		doc.Find("script, style").Remove()

		text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, format.GetPlatformAgnosticNewline()), nil
}

package format

import (
	"strings"

	"golang.org/x/net/html"
)

// ExtractHTMLTitle returns the title of a full HTML document.
// Report pages are complete documents, fragments return an empty string.
func ExtractHTMLTitle(body []byte) string {
	content := string(body)
	contentLower := strings.ToLower(content)

	if !strings.Contains(contentLower, "<html") {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return ""
	}

	var title string
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = n.FirstChild.Data
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(doc)

	return title
}

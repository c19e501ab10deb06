package extract

import (
	"strings"
	"testing"
)

// BenchmarkFromHTML covers page sizes from a stub to a long article.
func BenchmarkFromHTML(b *testing.B) {
	opts := Options{Years: YearWindow{From: 2024, To: 2029}}
	pages := []struct {
		name string
		body []byte
	}{
		{"stub", []byte("<html><head><title>t</title></head><body><main><p>a</p></main></body></html>")},
		{"article", makeHTML(50, 60)},
		{"longform", makeHTML(200, 200)},
	}
	for _, p := range pages {
		b.Run(p.name, func(b *testing.B) {
			b.SetBytes(int64(len(p.body)))
			for i := 0; i < b.N; i++ {
				_ = FromHTML(p.body, "https://example.com/", opts)
			}
		})
	}
}

func makeHTML(paras int, links int) []byte {
	var sb strings.Builder
	sb.WriteString("<html><head><title>demo</title></head><body><main>")
	for i := 0; i < paras; i++ {
		sb.WriteString("<h2>Heading</h2><p>")
		sb.WriteString(sampleText)
		sb.WriteString("</p>")
	}
	sb.WriteString("<ul>")
	for i := 0; i < links; i++ {
		sb.WriteString(`<li><a href="https://ref.example.org/page">`)
		sb.WriteString(sampleText)
		sb.WriteString("</a></li>")
	}
	sb.WriteString("</ul></main></body></html>")
	return []byte(sb.String())
}

const sampleText = "Lorem ipsum dolor sit amet, consectetur adipiscing elit. Sed do eiusmod tempor incididunt ut labore et dolore magna aliqua."

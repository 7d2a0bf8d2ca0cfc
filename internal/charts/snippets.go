package charts

import (
	"strings"
	"unicode"

	"github.com/go-echarts/go-echarts/v2/render"
)

// ChartSnippet represents an embeddable go-echarts chart fragment.
// Div holds the root element the chart draws into, Script the <script> block
// that initializes it and HTML both combined for template substitution.
type ChartSnippet struct {
	ID     string
	Title  string
	Div    string
	Script string
	Option string
	HTML   string
}

// missingPoint is the ECharts placeholder that leaves a gap in a line
const missingPoint = "-"

func newSnippet(id, title string, s render.ChartSnippet) ChartSnippet {
	return ChartSnippet{
		ID:     id,
		Title:  title,
		Div:    s.Element,
		Script: s.Script,
		Option: s.Option,
		HTML:   s.Element + "\n" + s.Script,
	}
}

// ChartID derives a stable element id from a chart title
func ChartID(title string) string {
	var b strings.Builder
	b.WriteString("chart")
	dash := true
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash {
				b.WriteByte('-')
				dash = false
			}
			b.WriteRune(r)
			continue
		}
		dash = true
	}
	return b.String()
}

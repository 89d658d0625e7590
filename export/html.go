package export

import (
	"fmt"
	"html/template"
	"io"
	"sort"
)

// indexTemplate renders the human-readable summary page spec §4.9 names
// alongside the machine-readable artifacts (scores.jsonl, summary.csv,
// evidence_bundle.json, SUCCESS_PIN.json) in the same bundle.
var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>ESG Evidence Gold-Lite Bundle</title></head>
<body>
<h1>ESG Evidence Gold-Lite Bundle</h1>
<p>All identical: {{.AllIdentical}}</p>
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>Doc</th><th>Company</th><th>Year</th><th>Theme</th><th>Stage</th><th>Evidence</th></tr>
{{range .Rows}}<tr><td>{{.DocID}}</td><td>{{.Company}}</td><td>{{.Year}}</td><td>{{.Theme}}</td><td>{{.Stage}}</td><td>{{.EvidenceCount}}</td></tr>
{{end}}
</table>
</body>
</html>
`))

type indexRow struct {
	DocID, Company, Theme string
	Year                  int
	Stage                 string
	EvidenceCount         int
}

type indexData struct {
	AllIdentical bool
	Rows         []indexRow
}

// WriteIndexHTML renders the Gold-Lite bundle's human-readable summary
// page (spec §4.9 "index.html").
func WriteIndexHTML(w io.Writer, lines []ScoresLine, allIdentical bool) error {
	var rows []indexRow
	for _, l := range lines {
		for _, s := range l.Scores {
			stage := "-"
			if s.Stage != nil {
				stage = fmt.Sprintf("%d", *s.Stage)
			}
			rows = append(rows, indexRow{
				DocID:         l.DocID,
				Company:       l.Company,
				Year:          l.Year,
				Theme:         s.Theme,
				Stage:         stage,
				EvidenceCount: len(s.Evidence),
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DocID != rows[j].DocID {
			return rows[i].DocID < rows[j].DocID
		}
		return rows[i].Theme < rows[j].Theme
	})
	return indexTemplate.Execute(w, indexData{AllIdentical: allIdentical, Rows: rows})
}

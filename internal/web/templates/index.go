// Package templates holds the HTML components served by the web package.
package templates

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/workerdesk/internal/core"
)

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Workers</title>
<style>
body{font-family:system-ui,sans-serif;margin:2rem;color:#222}
table{border-collapse:collapse;width:100%;margin-top:1rem}
th,td{border:1px solid #ddd;padding:.4rem .6rem;text-align:left;font-size:.9rem}
th{background:#f4f4f4}
.empty{color:#777;font-style:italic}
form{margin:1rem 0}
</style>
</head>
<body>
<h1>Workers</h1>
`

const pageFoot = `</body>
</html>
`

var columnTitles = []string{
	"ID", "Name", "Employee ID", "Email", "Phone", "Department", "Date of birth", "Date of joining", "Role",
}

// Index renders the worker table and a CSV upload form posting to uploadPath.
func Index(workers []core.Worker, uploadPath string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		b.WriteString(pageHead)
		b.WriteString(`<form method="post" enctype="multipart/form-data" action="`)
		b.WriteString(templ.EscapeString(uploadPath))
		b.WriteString(`"><input type="file" name="file" accept=".csv,text/csv" required> <button type="submit">Import CSV</button></form>`)
		b.WriteString("\n")

		if len(workers) == 0 {
			b.WriteString(`<p class="empty">No workers yet.</p>` + "\n")
			b.WriteString(pageFoot)
			_, err := io.WriteString(w, b.String())
			return err
		}

		b.WriteString("<table>\n<thead><tr>")
		for _, title := range columnTitles {
			b.WriteString("<th>" + title + "</th>")
		}
		b.WriteString("</tr></thead>\n<tbody>\n")

		for _, wk := range workers {
			b.WriteString("<tr>")
			cell(&b, strconv.FormatInt(wk.ID, 10))
			cell(&b, wk.Name)
			cell(&b, wk.EmployeeID)
			cell(&b, wk.Email)
			cell(&b, wk.PhoneNumber)
			cell(&b, wk.Department)
			cell(&b, deref(wk.DateOfBirth))
			cell(&b, deref(wk.DateOfJoining))
			cell(&b, wk.Role)
			b.WriteString("</tr>\n")
		}

		b.WriteString("</tbody>\n</table>\n")
		b.WriteString(pageFoot)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func cell(b *strings.Builder, s string) {
	b.WriteString("<td>")
	b.WriteString(templ.EscapeString(s))
	b.WriteString("</td>")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

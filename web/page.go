package web

import (
	"bytes"
	"html/template"

	"github.com/papercomputeco/askbox/pkg/shell"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.View.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 46rem; margin: 3rem auto; padding: 0 1rem; color: #262730; }
h1 { font-size: 2rem; }
input[type=text] { width: 100%; box-sizing: border-box; padding: .6rem; font-size: 1rem; border: 1px solid #ccc; border-radius: .4rem; }
.error { background: #ffe9e9; color: #7d1a1a; padding: .8rem 1rem; border-radius: .4rem; }
.busy { color: #555; margin-top: 1rem; }
.answer { white-space: pre-wrap; margin-top: 1.5rem; line-height: 1.5; }
footer { margin-top: 3rem; color: #999; font-size: .8rem; }
</style>
</head>
<body>
<h1>{{.View.Title}}</h1>
{{if .Unconfigured}}
<div class="error" role="alert">{{.View.Error}}</div>
{{else}}
<form method="post" action="/" id="ask">
<input type="text" name="question" placeholder="{{.View.Placeholder}}" value="{{.View.Question}}" autofocus>
</form>
<div class="busy" id="busy"{{if not .View.Busy}} hidden{{end}}>{{.BusyText}}</div>
{{if .View.Error}}<div class="error answer" role="alert">{{.View.Error}}</div>{{end}}
{{if .View.Answer}}<div class="answer" id="answer">{{.View.Answer}}</div>{{end}}
<script>
document.getElementById("ask").addEventListener("submit", function (e) {
  if (!e.target.question.value) { e.preventDefault(); return; }
  document.getElementById("busy").hidden = false;
  var a = document.getElementById("answer"); if (a) { a.hidden = true; }
});
</script>
{{end}}
{{if .Model}}<footer>model: {{.Model}}</footer>{{end}}
</body>
</html>
`))

type pageData struct {
	View         shell.View
	Unconfigured bool
	BusyText     string
	Model        string
}

func renderPage(view shell.View, model string) ([]byte, error) {
	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, pageData{
		View:         view,
		Unconfigured: view.State == shell.Unconfigured,
		BusyText:     shell.BusyText,
		Model:        model,
	})
	return buf.Bytes(), err
}

package render

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/clerkbill/clerk/internal/project"
)

// texEscaper escapes the characters LaTeX treats specially in prose.
var texEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`%`, `\%`,
	`$`, `\$`,
	`&`, `\&`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

var invoiceTmpl = template.Must(template.New("invoice.tex").Funcs(template.FuncMap{
	"tex": texEscaper.Replace,
}).Parse(`\documentclass[11pt]{article}
\usepackage[margin=1in]{geometry}
\usepackage{booktabs}
\pagestyle{empty}
\begin{document}

\begin{flushright}
  {\LARGE Invoice \#{{.Number}}}\\[0.5em]
  {{.Date}}
\end{flushright}

\begin{flushleft}
  \textbf{ {{- tex .ClientName -}} }\\
{{- range .AddressLines}}
  {{tex .}}\\
{{- end}}
\end{flushleft}

\vspace{2em}

\begin{tabular}{llrrr}
  \toprule
  Service & Period & Hours & Rate & Amount\\
  \midrule
{{- range .Items}}
  {{tex .Service}} & {{.Period}} & {{.Hours}} & {{.Rate}} & {{.Amount}}\\
{{- end}}
  \midrule
  \multicolumn{4}{r}{Subtotal} & {{.Subtotal}}\\
{{- range .Taxes}}
  \multicolumn{4}{r}{ {{- tex .Name}} ({{.Rate}})} & {{.Amount}}\\
{{- end}}
  \midrule
  \multicolumn{4}{r}{\textbf{Total}} & \textbf{ {{- .Total -}} }\\
  \bottomrule
\end{tabular}

\end{document}
`))

// invoiceDoc is the template context for the LaTeX invoice.
type invoiceDoc struct {
	Number       int
	Date         string
	ClientName   string
	AddressLines []string
	Items        []invoiceDocItem
	Subtotal     string
	Taxes        []invoiceDocTax
	Total        string
}

type invoiceDocItem struct {
	Service string
	Period  string
	Hours   string
	Rate    string
	Amount  string
}

type invoiceDocTax struct {
	Name   string
	Rate   string
	Amount string
}

// Latex renders the invoice as a standalone LaTeX document. PDF generation
// is left to the user's toolchain; only the source is produced.
func Latex(inv *project.Invoice, client *project.Client) (string, error) {
	doc := invoiceDoc{
		Number:       inv.Number,
		Date:         inv.Date.String(),
		ClientName:   client.Name,
		AddressLines: strings.Split(client.Address, "\n"),
		Subtotal:     inv.Subtotal.String(),
		Total:        inv.Total.String(),
	}
	for _, item := range inv.Items {
		doc.Items = append(doc.Items, invoiceDocItem{
			Service: item.Service,
			Period:  fmt.Sprintf("%s -- %s", inv.Period.From, inv.Period.Until),
			Hours:   item.Hours.String(),
			Rate:    item.Rate.String(),
			Amount:  item.Amount.String(),
		})
	}
	for _, tax := range inv.Taxes {
		doc.Taxes = append(doc.Taxes, invoiceDocTax{
			Name:   tax.Name,
			Rate:   fmt.Sprintf(`%s\%%`, tax.Rate.Shift(2)),
			Amount: tax.Amount.String(),
		})
	}

	var b strings.Builder
	if err := invoiceTmpl.Execute(&b, doc); err != nil {
		return "", fmt.Errorf("render invoice #%d: %w", inv.Number, err)
	}
	return b.String(), nil
}

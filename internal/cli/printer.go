package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
)

type printer struct {
	out io.Writer
}

func (p printer) title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(p.out, title)
}

func (p printer) titleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)
	_, _ = t.Fprint(p.out, title)
	_, _ = c.Fprintf(p.out, " - %d\n", count)
}

func (p printer) faint(text string) {
	_, _ = color.New(color.Faint).Fprintln(p.out, text)
}

func (p printer) table(header []interface{}, rows [][]interface{}) {
	tbl := uitable.New()
	tbl.Separator = "  "
	bold := color.New(color.Bold)
	head := make([]interface{}, len(header))
	for i, h := range header {
		head[i] = bold.Sprint(h)
	}
	tbl.AddRow(head...)
	for _, r := range rows {
		tbl.AddRow(r...)
	}
	_, _ = fmt.Fprintln(p.out, tbl)
}

// row печатает одну строку без заголовка, для потокового вывода
func (p printer) row(cells ...interface{}) {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(cells...)
	_, _ = fmt.Fprintln(p.out, tbl)
}

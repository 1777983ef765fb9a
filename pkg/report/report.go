// Package report renders the classified results of a run: per-status name
// lists, the full status table, and the static glossary/help views.
package report

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/nyuappdev/dining-audit/pkg/recon"
)

// View lists every name whose history contains the given status.
func View(run *recon.RunState, s recon.Status) string {
	names := run.NamesWith(s)

	var b strings.Builder
	fmt.Fprintf(&b, "%s — %d location(s)\n", s, len(names))
	if len(names) == 0 {
		b.WriteString("  (none)\n")
		return b.String()
	}
	for _, name := range names {
		fmt.Fprintf(&b, "  %s\n", name)
	}
	return b.String()
}

// ExcessView combines the two excess categories into one listing.
func ExcessView(run *recon.RunState) string {
	return View(run, recon.StatusXMLExcess) + View(run, recon.StatusSiteExcess)
}

// Table renders every classified name with its full ordered status
// history, one row per name in first-classified order.
func Table(run *recon.RunState) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Location", "Statuses"})

	for _, name := range run.Names() {
		var parts []string
		for _, s := range run.History(name) {
			parts = append(parts, s.String())
		}
		tw.AppendRow(table.Row{name, strings.Join(parts, ", ")})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
	})

	return tw.Render() + "\n"
}

// Glossary explains every status in report order.
func Glossary() string {
	var b strings.Builder
	b.WriteString("Statuses:\n")
	for _, s := range recon.AllStatuses() {
		fmt.Fprintf(&b, "  %-11s %s\n", s, s.Description())
	}
	return b.String()
}

// Help lists the interactive commands.
func Help() string {
	return `Commands:
  p  locations that passed every check
  x  locations with no locations.xml match
  m  locations with menu problems
  s  locations missing from the dining page
  e  excess locations.xml / dining page entries
  t  full status table
  g  status glossary
  l  show the error log (optionally email it)
  r  rerun all checks
  d  stop auto-sending the error log
  f  forget the remembered email address
  h  this help
`
}

// Package ui renders dictionary views, statistics and mutation results for
// the terminal, and asks for delete confirmation.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/papapumpkin/sarf/internal/api"
	"github.com/papapumpkin/sarf/internal/journal"
	"github.com/papapumpkin/sarf/internal/lexicon"
	"github.com/papapumpkin/sarf/internal/mutation"
	"github.com/papapumpkin/sarf/internal/stats"
	"github.com/papapumpkin/sarf/internal/view"
)

// Printer writes listings to out and diagnostics to errOut.
type Printer struct {
	out    io.Writer
	errOut io.Writer
	st     styles
}

// New creates a Printer. Nil writers default to stdout and stderr.
func New(out, errOut io.Writer) *Printer {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &Printer{out: out, errOut: errOut, st: newStyles(lipgloss.NewRenderer(out))}
}

func (p *Printer) Info(msg string) {
	fmt.Fprintln(p.errOut, p.st.muted.Render(msg))
}

func (p *Printer) Warn(msg string) {
	fmt.Fprintln(p.errOut, p.st.warn.Render("warning: ")+msg)
}

func (p *Printer) Error(msg string) {
	fmt.Fprintln(p.errOut, p.st.danger.Render("error: ")+msg)
}

// Roots prints each root with its derivations ordered by word.
func (p *Printer) Roots(roots []lexicon.Root, order view.Order) {
	if len(roots) == 0 {
		fmt.Fprintln(p.out, p.st.muted.Render("(no roots)"))
		return
	}
	for _, r := range roots {
		fmt.Fprintf(p.out, "%s %s\n", p.st.heading.Render(r.Text),
			p.st.muted.Render(fmt.Sprintf("(%d)", len(r.Derivations))))
		for _, d := range view.SortDerivations(r.Derivations, order) {
			fmt.Fprintf(p.out, "  %s  %s  %s\n", d.Word, p.st.label.Render(d.Scheme), p.st.tag.Render(string(d.Category)))
		}
	}
}

// Derivations prints a flattened derivation list.
func (p *Printer) Derivations(entries []view.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(p.out, p.st.muted.Render("(no derivations)"))
		return
	}
	for _, e := range entries {
		fmt.Fprintf(p.out, "%s  %s %s  %s  %s\n",
			p.st.value.Render(e.Word),
			p.st.label.Render("←"), e.Root,
			p.st.label.Render(e.Scheme),
			p.st.tag.Render(string(e.Category)))
	}
}

// Schemes prints the scheme listing.
func (p *Printer) Schemes(schemes []lexicon.Scheme) {
	if len(schemes) == 0 {
		fmt.Fprintln(p.out, p.st.muted.Render("(no schemes)"))
		return
	}
	for _, s := range schemes {
		line := fmt.Sprintf("%s  %s  %s", p.st.heading.Render(s.Name), p.st.label.Render(string(s.Type)), p.st.tag.Render(string(s.Category)))
		if s.UsageCount > 0 {
			line += p.st.muted.Render(fmt.Sprintf("  used %d×", s.UsageCount))
		}
		if s.Description != "" {
			line += "  " + s.Description
		}
		fmt.Fprintln(p.out, line)
	}
}

// Stats prints a statistics snapshot.
func (p *Printer) Stats(s stats.Snapshot) {
	none := p.st.muted.Render("none")
	topRoot, topCategory := none, none
	if s.HasTopRoot() {
		topRoot = s.TopRoot
	}
	if s.HasTopCategory() {
		topCategory = string(s.TopCategory)
	}

	rows := [][2]string{
		{"roots", fmt.Sprint(s.TotalRoots)},
		{"derivations", fmt.Sprint(s.TotalDerivations)},
		{"categories", fmt.Sprint(s.DistinctCategories)},
		{"top root", topRoot},
		{"top category", topCategory},
	}
	for _, r := range rows {
		fmt.Fprintf(p.out, "%s %s\n", p.st.label.Render(fmt.Sprintf("%-13s", r[0]+":")), r[1])
	}
	for _, cc := range s.Categories {
		fmt.Fprintf(p.out, "  %s %d\n", p.st.tag.Render(fmt.Sprintf("%-18s", cc.Category)), cc.Count)
	}
	fmt.Fprintln(p.out, p.st.muted.Render("computed "+s.ComputedAt.Format(time.DateTime)))
}

// Status prints the state of one mutation.
func (p *Printer) Status(s mutation.Status) {
	subject := fmt.Sprintf("%s %s %s", s.Op, s.Key.Target, s.Key.Name)
	switch s.State {
	case mutation.Succeeded:
		fmt.Fprintln(p.out, p.st.success.Render(iconDone+" "+subject))
		if s.Warning != "" {
			p.Warn(s.Warning)
		}
	case mutation.Failed:
		reason := "failed"
		if s.Failure != nil {
			reason = s.Failure.Reason
		}
		fmt.Fprintf(p.out, "%s %s\n", p.st.danger.Render(iconFailed+" "+subject), reason)
	case mutation.Executing:
		fmt.Fprintln(p.out, p.st.working.Render(iconWorking+" "+subject))
	case mutation.Confirming:
		fmt.Fprintln(p.out, p.st.warn.Render(iconConfirm+" "+subject+" awaiting confirmation"))
	default:
		fmt.Fprintln(p.out, p.st.muted.Render(iconWaiting+" "+subject))
	}
}

// Category prints the category inferred for a scheme.
func (p *Printer) Category(scheme string, c lexicon.Category) {
	fmt.Fprintf(p.out, "%s  %s\n", scheme, p.st.tag.Render(string(c)))
}

// Generated prints the word produced from root and scheme.
func (p *Printer) Generated(root, scheme, word string) {
	fmt.Fprintf(p.out, "%s + %s → %s\n", root, p.st.label.Render(scheme), p.st.value.Render(word))
}

// Validation prints whether word derives from root.
func (p *Printer) Validation(root, word string, v api.Validation) {
	if !v.Valid {
		fmt.Fprintf(p.out, "%s %s does not derive from %s\n", p.st.danger.Render(iconFailed), word, root)
		return
	}
	line := fmt.Sprintf("%s %s derives from %s", p.st.success.Render(iconDone), word, root)
	if v.Scheme != "" {
		line += " " + p.st.label.Render("via "+v.Scheme)
	}
	fmt.Fprintln(p.out, line)
}

// Analysis prints the root and scheme found for word.
func (p *Printer) Analysis(word string, a api.Analysis) {
	if !a.Found {
		fmt.Fprintf(p.out, "%s no analysis for %s\n", p.st.danger.Render(iconFailed), word)
		return
	}
	parts := []string{p.st.success.Render(iconDone), word, "←", p.st.value.Render(a.Root)}
	if a.Scheme != "" {
		parts = append(parts, p.st.label.Render(a.Scheme))
	}
	fmt.Fprintln(p.out, strings.Join(parts, " "))
}

// History prints journal entries.
func (p *Printer) History(entries []journal.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(p.out, p.st.muted.Render("(no history)"))
		return
	}
	for _, e := range entries {
		icon, style := iconDone, p.st.success
		if e.State == mutation.Failed {
			icon, style = iconFailed, p.st.danger
		}
		line := fmt.Sprintf("%s %s %s %s %s",
			p.st.muted.Render(e.At.Local().Format(time.DateTime)),
			style.Render(icon), e.Op, e.Key.Target, e.Key.Name)
		if e.Failure != nil {
			line += "  " + e.Failure.Reason
		}
		if e.Warning != "" {
			line += "  " + p.st.warn.Render(e.Warning)
		}
		fmt.Fprintln(p.out, line)
	}
}

package shell

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/starford/termblog/internal/ansi"
	"github.com/starford/termblog/internal/catalog"
	"github.com/starford/termblog/internal/parser"
	"github.com/starford/termblog/internal/terminal"
)

// Stats summarises the posts of a catalog.
type Stats struct {
	Posts      int
	Words      int
	AvgWords   int
	Tags       []catalog.TagCount
	OldestDate string
}

// ComputeStats walks the posts of c.
func ComputeStats(c *catalog.Catalog) Stats {
	var st Stats
	for _, e := range c.Posts() {
		st.Posts++
		st.Words += e.Meta.WordCount
		if st.OldestDate == "" || e.Meta.Date < st.OldestDate {
			st.OldestDate = e.Meta.Date
		}
	}
	if st.Posts > 0 {
		st.AvgWords = int(math.Round(float64(st.Words) / float64(st.Posts)))
	}
	st.Tags = c.Tags()
	return st
}

// usageColor picks green, yellow or red by percentage.
func usageColor(pct float64) string {
	switch {
	case pct < 33:
		return ansi.BrightGreen
	case pct < 66:
		return ansi.BrightYellow
	default:
		return ansi.BrightRed
	}
}

func meter(label string, value int, pct float64) string {
	const length = 40
	filled := int(pct / 100 * length)
	var b strings.Builder
	for i := 0; i < length; i++ {
		if i < filled {
			b.WriteString(usageColor(pct) + "|" + ansi.Reset)
		} else {
			b.WriteString(ansi.Dim + "." + ansi.Reset)
		}
	}
	return fmt.Sprintf("  %s%-6s%s[%s] %s%4s%s %s",
		ansi.Bold, label, ansi.Reset, b.String(), ansi.Bold, fmt.Sprintf("%.0f%%", pct), ansi.Reset, ansi.Faint(fmt.Sprint(value)))
}

func bar(pct float64, length int) string {
	filled := int(pct / 100 * float64(length))
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < length; i++ {
		if i < filled {
			b.WriteString(usageColor(pct) + "█" + ansi.Reset)
		} else {
			b.WriteString(ansi.Dim + "░" + ansi.Reset)
		}
	}
	b.WriteString("]")
	return b.String()
}

func percent(v, limit float64) float64 {
	return math.Min(100, v/limit*100)
}

func runStats(_ context.Context, inv *Invocation) error {
	st := ComputeStats(inv.Catalog)
	now := inv.Shell.now()

	lines := []string{
		"",
		ansi.Bold + ansi.Inverse + " btop - blog monitor " + ansi.NoInverse + ansi.Reset +
			strings.Repeat(" ", 37) + ansi.Faint(now.Format("2006-01-02 15:04:05")),
		"",
		meter("Posts", st.Posts, percent(float64(st.Posts), 50)),
		meter("Words", st.Words, percent(float64(st.Words), 50000)),
		meter("Tags", len(st.Tags), percent(float64(len(st.Tags)), 20)),
		"",
		fmt.Sprintf("  %sAvg words/post:%s %s %s%d%s",
			ansi.BrightCyan, ansi.Reset, bar(percent(float64(st.AvgWords), 500), 30), ansi.Bold, st.AvgWords, ansi.Reset),
	}

	if oldest, err := time.Parse(parser.DateLayout, st.OldestDate); err == nil {
		days := max(now.Sub(oldest).Hours()/24, 1)
		perMonth := float64(st.Posts) / (days / 30)
		lines = append(lines, fmt.Sprintf("  %sPosts/month:%s    %s %s%.1f%s",
			ansi.BrightCyan, ansi.Reset, bar(math.Min(100, perMonth*20), 30), ansi.Bold, perMonth, ansi.Reset))
	}

	lines = append(lines, "",
		"  "+ansi.Bold+ansi.Inverse+" PID   TAG              %CPU  POSTS  COMMAND "+strings.Repeat(" ", 20)+ansi.NoInverse+ansi.Reset)
	for i, tc := range st.Tags[:min(8, len(st.Tags))] {
		cpu := float64(tc.Count) / float64(max(st.Posts, 1)) * 100
		color := ansi.BrightGreen
		if cpu > 30 {
			color = ansi.BrightYellow
		}
		if cpu > 50 {
			color = ansi.BrightRed
		}
		lines = append(lines, fmt.Sprintf("  %s  %s %s  %s  %s",
			ansi.Faint(fmt.Sprintf("%5d", 1000+i)),
			ansi.BrightWhite+fmt.Sprintf("%-16s", tc.Tag)+ansi.Reset,
			color+fmt.Sprintf("%5.1f", cpu)+ansi.Reset,
			ansi.Bold+fmt.Sprintf("%6d", tc.Count)+ansi.Reset,
			ansi.Faint("blog/"+tc.Tag)))
	}

	key := func(k, label string) string { return ansi.BrightGreen + k + ansi.Reset + ansi.Faint(label+" ") }
	lines = append(lines, "",
		ansi.Rule(77),
		key("F1", "Help")+key("F2", "Setup")+key("F3", "Search")+key("F9", "List")+key("F10", "Quit"),
		ansi.Dim+"Hint: Try "+ansi.Reset+ansi.Green+"ls"+ansi.Reset+ansi.Dim+", "+ansi.Reset+
			ansi.Green+"cat <file>"+ansi.Reset+ansi.Dim+", or "+ansi.Reset+ansi.Green+"help"+ansi.Reset,
		"")
	terminal.WriteLines(inv.Term, lines...)
	return nil
}

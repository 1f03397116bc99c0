package presenter

import (
	"errors"
	"sort"
	"strings"

	"github.com/park285/chess-archive-insight/internal/domain"
	"github.com/park285/chess-archive-insight/internal/msgcat"
	"github.com/park285/chess-archive-insight/internal/pipeline"
	"github.com/park285/chess-archive-insight/internal/stats"
	"github.com/park285/chess-archive-insight/pkg/insightdto"
)

// PrefixProvider exposes the command prefix replies should mention.
type PrefixProvider interface {
	Prefix() string
}

// Formatter renders reports and errors through a message catalog.
type Formatter struct {
	catalog        *msgcat.Catalog
	prefixProvider PrefixProvider
}

func NewFormatter(catalog *msgcat.Catalog, provider PrefixProvider) *Formatter {
	return &Formatter{catalog: catalog, prefixProvider: provider}
}

func (f *Formatter) Prefix() string {
	if f == nil || f.prefixProvider == nil {
		return ""
	}
	return strings.TrimSpace(f.prefixProvider.Prefix())
}

// render falls back to the key so a broken override never yields an empty reply.
func (f *Formatter) render(key string, data any) string {
	if f == nil || f.catalog == nil {
		return key
	}
	out, err := f.catalog.Render(key, data)
	if err != nil {
		return key
	}
	return out
}

func (f *Formatter) SeeMoreHeader() string {
	return f.render("report.see_more", nil)
}

func (f *Formatter) Usage() string {
	return f.render("usage", map[string]any{"Prefix": f.Prefix()})
}

// Report renders the three tables of a run.
func (f *Formatter) Report(rep *pipeline.Report) string {
	if rep == nil {
		return f.render("errors.internal", nil)
	}
	q := rep.Query
	var sb strings.Builder
	sb.WriteString(f.render("report.header", map[string]any{
		"Player": q.Player, "Start": q.Start, "End": q.End, "TimeClass": q.TimeClass,
	}))
	sb.WriteString("\n")
	sb.WriteString(f.render("report.fetched", map[string]any{"Games": rep.Dataset.Len()}))
	sb.WriteString("\n\n")

	f.writeOpenings(&sb, "report.openings_white", rep.WhiteOpenings)
	sb.WriteString("\n")
	f.writeOpenings(&sb, "report.openings_black", rep.BlackOpenings)

	if len(rep.TimeClasses) > 0 {
		sb.WriteString("\n")
		sb.WriteString(f.render("report.time_classes", nil))
		sb.WriteString("\n")
		for _, name := range stats.SortedTimeClasses(rep.TimeClasses) {
			st := rep.TimeClasses[name]
			sb.WriteString(f.render("report.time_class_line", map[string]any{
				"Name": name, "WinRate": st.WinRate, "Games": st.Games, "Wins": st.Wins,
			}))
			sb.WriteString("\n")
		}
	}

	if latest := stats.LatestByTimeClass(rep.Timeline); len(latest) > 0 {
		names := make([]string, 0, len(latest))
		for name := range latest {
			names = append(names, name)
		}
		sort.Strings(names)
		sb.WriteString("\n")
		sb.WriteString(f.render("report.ratings", nil))
		sb.WriteString("\n")
		for _, name := range names {
			p := latest[name]
			sb.WriteString(f.render("report.rating_line", map[string]any{
				"Name": name, "Rating": p.UserElo, "Date": p.Date.Format(dateLayout),
			}))
			sb.WriteString("\n")
		}
	}

	if t := rep.Tally; t.MissingOpening+t.Malformed > 0 {
		sb.WriteString("\n")
		sb.WriteString(f.render("report.skipped", map[string]any{
			"MissingOpening": t.MissingOpening, "Malformed": t.Malformed,
		}))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (f *Formatter) writeOpenings(sb *strings.Builder, headerKey string, list []stats.OpeningStat) {
	sb.WriteString(f.render(headerKey, map[string]any{"Limit": stats.TopOpeningsLimit}))
	sb.WriteString("\n")
	if len(list) == 0 {
		sb.WriteString(f.render("report.no_openings", nil))
		sb.WriteString("\n")
		return
	}
	for i, o := range list {
		sb.WriteString(f.render("report.opening_line", map[string]any{
			"Rank": i + 1, "Label": o.Label, "WinRate": o.WinRate, "Games": o.Games,
		}))
		sb.WriteString("\n")
	}
}

// Error turns an Analyze failure into a reply for the query that caused it.
func (f *Formatter) Error(err error, q pipeline.Query) string {
	de := insightdto.FromError(err)
	data := map[string]any{"Player": q.Player, "Start": q.Start, "End": q.End, "Detail": invalidDetail(err)}
	switch de.Code {
	case insightdto.CodePlayerNotFound, insightdto.CodeEmptyRange, insightdto.CodeFetchFailed, insightdto.CodeCanceled:
		return f.render("errors."+de.Code, data)
	case insightdto.CodeInvalidQuery:
		return f.render("errors.invalid_query", data) + "\n" + f.Usage()
	default:
		return f.render("errors.internal", data)
	}
}

func invalidDetail(err error) string {
	if err == nil || !errors.Is(err, domain.ErrInvalidQuery) {
		return ""
	}
	msg := err.Error()
	prefix := domain.ErrInvalidQuery.Error() + ": "
	return strings.TrimPrefix(msg, prefix)
}

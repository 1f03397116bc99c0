package bot

import (
	"strings"
	"time"

	"github.com/park285/chess-archive-insight/internal/archive"
	"github.com/park285/chess-archive-insight/internal/domain"
	"github.com/park285/chess-archive-insight/internal/pipeline"
)

var statsCommands = map[string]bool{"전적": true, "stats": true}

var helpCommands = map[string]bool{"help": true, "도움말": true}

type commandKind int

const (
	commandNone commandKind = iota
	commandHelp
	commandStats
)

type command struct {
	kind  commandKind
	query pipeline.Query
}

// parseCommand reads "<prefix>전적 <user> [start] [end] [time_class]".
// Month tokens fill start then end; a single month means that month only.
// Anything else after the user is rejected by Query.Validate later.
func parseCommand(text, prefix string, now time.Time, defaultTimeClass string) command {
	text = strings.TrimSpace(text)
	if prefix == "" || !strings.HasPrefix(text, prefix) {
		return command{}
	}
	fields := strings.Fields(strings.TrimPrefix(text, prefix))
	if len(fields) == 0 {
		return command{}
	}
	name := strings.ToLower(fields[0])
	switch {
	case helpCommands[name]:
		return command{kind: commandHelp}
	case !statsCommands[name]:
		return command{}
	case len(fields) < 2:
		return command{kind: commandHelp}
	}

	q := pipeline.Query{Player: fields[1]}
	var months []string
	for _, tok := range fields[2:] {
		lower := strings.ToLower(tok)
		switch {
		case archive.IsMonthToken(tok):
			months = append(months, tok)
		case domain.IsTimeClassFilter(lower):
			q.TimeClass = lower
		default:
			// surfaces as invalid_query
			if q.Start == "" {
				q.Start = tok
			} else {
				q.End = tok
			}
		}
	}
	if q.Start == "" && len(months) > 0 {
		q.Start = months[0]
		months = months[1:]
	}
	if q.End == "" && len(months) > 0 {
		q.End = months[0]
	}
	if q.Start != "" && q.End == "" && archive.IsMonthToken(q.Start) {
		q.End = q.Start
	}
	return command{kind: commandStats, query: q.WithDefaults(now, defaultTimeClass)}
}

package archive

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/park285/chess-archive-insight/internal/domain"
)

// Tag names read from the annotation text.
const (
	tagDate        = "Date"
	tagWhite       = "White"
	tagBlack       = "Black"
	tagLink        = "Link"
	tagECO         = "ECO"
	tagECOURL      = "ECOUrl"
	tagTermination = "Termination"
	tagWhiteElo    = "WhiteElo"
	tagBlackElo    = "BlackElo"
)

var requiredTags = []string{tagDate, tagWhite, tagBlack, tagLink, tagECO, tagECOURL, tagTermination, tagWhiteElo, tagBlackElo}

// [Name "value"] with PGN-style \" and \\ escapes inside the value.
var tagPairRe = regexp.MustCompile(`\[([A-Za-z0-9_]+)\s+"((?:[^"\\]|\\.)*)"\]`)

var tagUnescaper = strings.NewReplacer(`\"`, `"`, `\\`, `\`)

// tagSet holds the required tags found in one annotation text.
type tagSet map[string]string

// scanTags collects the required tags in a single pass. The first occurrence of a name wins.
func scanTags(text string) tagSet {
	tags := make(tagSet, len(requiredTags))
	for _, m := range tagPairRe.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if !isRequiredTag(name) {
			continue
		}
		if _, seen := tags[name]; seen {
			continue
		}
		tags[name] = tagUnescaper.Replace(m[2])
	}
	return tags
}

func isRequiredTag(name string) bool {
	for _, t := range requiredTags {
		if t == name {
			return true
		}
	}
	return false
}

// record builds a GameRecord or reports false if any required tag is missing
// or a rating is not an integer.
func (t tagSet) record(player, timeClass string) (domain.GameRecord, bool) {
	for _, name := range requiredTags {
		if _, ok := t[name]; !ok {
			return domain.GameRecord{}, false
		}
	}
	whiteElo, err := strconv.Atoi(strings.TrimSpace(t[tagWhiteElo]))
	if err != nil {
		return domain.GameRecord{}, false
	}
	blackElo, err := strconv.Atoi(strings.TrimSpace(t[tagBlackElo]))
	if err != nil {
		return domain.GameRecord{}, false
	}

	ecoURL := t[tagECOURL]
	result := domain.ResultLoss
	// Substring match on the termination phrase, e.g. "hikaru won by resignation".
	if strings.Contains(t[tagTermination], player) {
		result = domain.ResultWin
	}

	return domain.GameRecord{
		TimeClass:   timeClass,
		Date:        t[tagDate],
		White:       t[tagWhite],
		Black:       t[tagBlack],
		GameLink:    t[tagLink],
		OpeningCode: t[tagECO],
		OpeningName: lastPathSegment(ecoURL),
		OpeningLink: ecoURL,
		Result:      result,
		WhiteElo:    whiteElo,
		BlackElo:    blackElo,
	}, true
}

func lastPathSegment(u string) string {
	if i := strings.LastIndex(u, "/"); i >= 0 {
		return u[i+1:]
	}
	return u
}

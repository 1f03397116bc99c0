package insightdto

import "time"

type Query struct {
	Player    string `json:"player"`
	Start     string `json:"start"`
	End       string `json:"end"`
	TimeClass string `json:"time_class"`
}

type Game struct {
	TimeClass   string `json:"time_class"`
	Date        string `json:"date"`
	White       string `json:"white"`
	Black       string `json:"black"`
	GameLink    string `json:"game_link"`
	OpeningCode string `json:"opening_code"`
	OpeningName string `json:"opening_name"`
	OpeningLink string `json:"opening_link"`
	Result      string `json:"result"`
	WhiteElo    int    `json:"white_elo"`
	BlackElo    int    `json:"black_elo"`
}

type OpeningStat struct {
	Opening string  `json:"opening"`
	Games   int     `json:"games"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"win_rate"`
}

type TimeClassStat struct {
	TimeClass string  `json:"time_class"`
	Games     int     `json:"games"`
	Wins      int     `json:"wins"`
	WinRate   float64 `json:"win_rate"`
}

type RatingPoint struct {
	Date      string `json:"date"`
	Rating    int    `json:"rating"`
	TimeClass string `json:"time_class"`
}

type Tally struct {
	Seen           int `json:"seen"`
	Kept           int `json:"kept"`
	FilteredOut    int `json:"filtered_out"`
	MissingOpening int `json:"missing_opening"`
	Malformed      int `json:"malformed"`
}

// Report is the JSON shape of one analysis run. Games is omitted unless asked for.
type Report struct {
	RunID         string          `json:"run_id"`
	Query         Query           `json:"query"`
	Months        []string        `json:"months"`
	GameCount     int             `json:"game_count"`
	Games         []Game          `json:"games,omitempty"`
	WhiteOpenings []OpeningStat   `json:"white_openings"`
	BlackOpenings []OpeningStat   `json:"black_openings"`
	TimeClasses   []TimeClassStat `json:"time_classes"`
	Timeline      []RatingPoint   `json:"timeline"`
	Tally         Tally           `json:"tally"`
	StartedAt     time.Time       `json:"started_at"`
	ElapsedMillis int64           `json:"elapsed_ms"`
}

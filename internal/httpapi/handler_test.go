package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/park285/chess-archive-insight/internal/domain"
	"github.com/park285/chess-archive-insight/internal/pipeline"
	"github.com/park285/chess-archive-insight/internal/stats"
	"github.com/park285/chess-archive-insight/pkg/insightdto"
)

type stubAnalyzer struct {
	rep  *pipeline.Report
	err  error
	last pipeline.Query
}

func (s *stubAnalyzer) Analyze(ctx context.Context, q pipeline.Query) (*pipeline.Report, error) {
	s.last = q
	if s.err != nil {
		return nil, s.err
	}
	r := *s.rep
	r.Query = q
	return &r, nil
}

func testReport() *pipeline.Report {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return &pipeline.Report{
		RunID:   "run-1",
		Months:  []string{"2024-03"},
		Dataset: domain.NewDataset([]domain.GameRecord{{TimeClass: "blitz", Date: "2024.03.01", White: "alice", Black: "bob", OpeningCode: "C50", OpeningName: "Italian Game", Result: domain.ResultWin, WhiteElo: 1500, BlackElo: 1400}}),
		WhiteOpenings: []stats.OpeningStat{{Label: "Italian Game (C50)", Games: 1, Wins: 1, WinRate: 100}},
		BlackOpenings: []stats.OpeningStat{},
		TimeClasses:   map[string]stats.TimeClassStat{"blitz": {Games: 1, Wins: 1, WinRate: 100}},
		Timeline:      []stats.RatingPoint{{Date: day, UserElo: 1500, TimeClass: "blitz"}},
	}
}

func newTestRouter(a Analyzer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(a, WithDefaultTimeClass("all"))
	h.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }
	return NewRouter(h, nil)
}

func do(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHealthz(t *testing.T) {
	w := do(newTestRouter(&stubAnalyzer{rep: testReport()}), "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestReportDefaultsAndJSON(t *testing.T) {
	a := &stubAnalyzer{rep: testReport()}
	w := do(newTestRouter(a), "/api/players/alice/report")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if a.last.Player != "alice" || a.last.Start != "2024-01" || a.last.End != "2024-12" || a.last.TimeClass != "all" {
		t.Fatalf("unexpected query: %+v", a.last)
	}
	var got insightdto.Report
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.GameCount != 1 || len(got.Games) != 0 || got.WhiteOpenings[0].Opening != "Italian Game (C50)" {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestReportExplicitQueryWithGames(t *testing.T) {
	a := &stubAnalyzer{rep: testReport()}
	w := do(newTestRouter(a), "/api/players/alice/report?start=2024-02&end=2024-03&time_class=blitz&games=true")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if a.last.Start != "2024-02" || a.last.End != "2024-03" || a.last.TimeClass != "blitz" {
		t.Fatalf("unexpected query: %+v", a.last)
	}
	var got insightdto.Report
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Games) != 1 || got.Games[0].White != "alice" {
		t.Fatalf("games missing: %+v", got.Games)
	}
}

func TestReportErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrPlayerNotFound, http.StatusNotFound, insightdto.CodePlayerNotFound},
		{domain.ErrEmptyRange, http.StatusUnprocessableEntity, insightdto.CodeEmptyRange},
		{domain.InvalidQuery("bad"), http.StatusBadRequest, insightdto.CodeInvalidQuery},
		{&domain.FetchError{Op: "x", URL: "u", Status: 503, Err: errors.New("down")}, http.StatusBadGateway, insightdto.CodeFetchFailed},
		{context.DeadlineExceeded, http.StatusGatewayTimeout, insightdto.CodeCanceled},
		{errors.New("boom"), http.StatusInternalServerError, insightdto.CodeInternal},
	}
	for _, tc := range cases {
		w := do(newTestRouter(&stubAnalyzer{err: tc.err}), "/api/players/alice/report")
		if w.Code != tc.status {
			t.Fatalf("%v: status = %d want %d", tc.err, w.Code, tc.status)
		}
		var de insightdto.DomainError
		if err := json.Unmarshal(w.Body.Bytes(), &de); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if de.Code != tc.code {
			t.Fatalf("%v: code = %s want %s", tc.err, de.Code, tc.code)
		}
	}
}

func TestRatingChart(t *testing.T) {
	w := do(newTestRouter(&stubAnalyzer{rep: testReport()}), "/api/players/alice/rating-chart.png")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type = %s", ct)
	}
	if w.Header().Get("X-Run-Id") != "run-1" {
		t.Fatalf("missing run id header")
	}
	if body := w.Body.Bytes(); len(body) < 8 || string(body[1:4]) != "PNG" {
		t.Fatalf("not a png")
	}
}

func TestRatingChartEmptyTimeline(t *testing.T) {
	rep := testReport()
	rep.Timeline = nil
	w := do(newTestRouter(&stubAnalyzer{rep: rep}), "/api/players/alice/rating-chart.png")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", w.Code)
	}
}

package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/park285/chess-archive-insight/internal/domain"
	"github.com/park285/chess-archive-insight/internal/irisfast"
	"github.com/park285/chess-archive-insight/internal/msgcat"
	"github.com/park285/chess-archive-insight/internal/pipeline"
	"github.com/park285/chess-archive-insight/internal/presenter"
	"github.com/park285/chess-archive-insight/internal/stats"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		name string
		text string
		kind commandKind
		want pipeline.Query
	}{
		{"no prefix", "전적 hikaru", commandNone, pipeline.Query{}},
		{"other command", "!체스 시작", commandNone, pipeline.Query{}},
		{"help", "!도움말", commandHelp, pipeline.Query{}},
		{"missing user", "!전적", commandHelp, pipeline.Query{}},
		{"defaults", "!전적 hikaru", commandStats, pipeline.Query{Player: "hikaru", Start: "2025-01", End: "2025-12", TimeClass: "all"}},
		{"alias and range", "!stats hikaru 2024-03 2024-05", commandStats, pipeline.Query{Player: "hikaru", Start: "2024-03", End: "2024-05", TimeClass: "all"}},
		{"single month", "!전적 hikaru 2024-03 Blitz", commandStats, pipeline.Query{Player: "hikaru", Start: "2024-03", End: "2024-03", TimeClass: "blitz"}},
		{"class first", "!전적 hikaru rapid 2024-01 2024-02", commandStats, pipeline.Query{Player: "hikaru", Start: "2024-01", End: "2024-02", TimeClass: "rapid"}},
		{"garbage kept for validation", "!전적 hikaru 2024/01", commandStats, pipeline.Query{Player: "hikaru", Start: "2024/01", End: "2025-12", TimeClass: "all"}},
	}
	for _, tc := range cases {
		got := parseCommand(tc.text, "!", fixedNow, "all")
		if got.kind != tc.kind {
			t.Fatalf("%s: kind = %v want %v", tc.name, got.kind, tc.kind)
		}
		if got.query != tc.want {
			t.Fatalf("%s: query = %+v want %+v", tc.name, got.query, tc.want)
		}
	}
}

type stubAnalyzer struct {
	rep *pipeline.Report
	err error
}

func (s stubAnalyzer) Analyze(ctx context.Context, q pipeline.Query) (*pipeline.Report, error) {
	if s.err != nil {
		return nil, s.err
	}
	r := *s.rep
	r.Query = q.Normalize()
	return &r, nil
}

type sent struct {
	kind, room, data string
}

type recordingEgress struct {
	mu   sync.Mutex
	msgs []sent
}

func (r *recordingEgress) SendText(ctx context.Context, room, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, sent{"text", room, message})
	return nil
}

func (r *recordingEgress) SendImage(ctx context.Context, room, imageBase64 string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, sent{"image", room, imageBase64})
	return nil
}

var _ irisfast.Egress = (*recordingEgress)(nil)

func newTestBot(t *testing.T, a Analyzer, eg irisfast.Egress) *Bot {
	t.Helper()
	cat, err := msgcat.NewLang("en", "")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	b := New(Config{Prefix: "!", DefaultTimeClass: "all"}, a, nil, eg, nil)
	b.formatter = presenter.NewFormatter(cat, b)
	b.now = func() time.Time { return fixedNow }
	return b
}

func reportWithTimeline() *pipeline.Report {
	return &pipeline.Report{
		RunID:       "run-1",
		Dataset:     domain.NewDataset([]domain.GameRecord{{TimeClass: "blitz", Date: "2025.01.02", White: "hikaru", Black: "x", OpeningCode: "C50", OpeningName: "Italian", Result: domain.ResultWin, WhiteElo: 3000, BlackElo: 2900}}),
		TimeClasses: map[string]stats.TimeClassStat{"blitz": {Games: 1, Wins: 1, WinRate: 100}},
		Timeline:    []stats.RatingPoint{{Date: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), UserElo: 3000, TimeClass: "blitz"}},
	}
}

func TestHandleStatsSendsReportAndChart(t *testing.T) {
	eg := &recordingEgress{}
	b := newTestBot(t, stubAnalyzer{rep: reportWithTimeline()}, eg)
	cmd := parseCommand("!전적 hikaru 2025-01", "!", fixedNow, "all")
	b.handle(context.Background(), "room-1", "u1", cmd)

	if len(eg.msgs) != 2 {
		t.Fatalf("expected text and image, got %d messages", len(eg.msgs))
	}
	text := eg.msgs[0]
	if text.kind != "text" || text.room != "room-1" || !strings.Contains(text.data, "Fetched 1 games") {
		t.Fatalf("unexpected text: %+v", text.kind)
	}
	if !strings.HasPrefix(text.data, "hikaru (2025-01 .. 2025-01, all)"+presenter.KakaoZeroWidthSpace) {
		t.Fatalf("header should become the see-more instruction")
	}
	if eg.msgs[1].kind != "image" || eg.msgs[1].data == "" {
		t.Fatalf("chart not sent")
	}
}

func TestHandleStatsWithoutTimelineSkipsImage(t *testing.T) {
	rep := reportWithTimeline()
	rep.Timeline = nil
	eg := &recordingEgress{}
	b := newTestBot(t, stubAnalyzer{rep: rep}, eg)
	b.handle(context.Background(), "r", "u", parseCommand("!전적 hikaru", "!", fixedNow, "all"))
	if len(eg.msgs) != 1 || eg.msgs[0].kind != "text" {
		t.Fatalf("expected a single text reply, got %+v", eg.msgs)
	}
}

func TestHandleErrorReply(t *testing.T) {
	eg := &recordingEgress{}
	b := newTestBot(t, stubAnalyzer{err: errors.Join(domain.ErrPlayerNotFound)}, eg)
	b.handle(context.Background(), "r", "u", parseCommand("!전적 ghost", "!", fixedNow, "all"))
	if len(eg.msgs) != 1 || !strings.Contains(eg.msgs[0].data, "'ghost' was not found") {
		t.Fatalf("unexpected reply %+v", eg.msgs)
	}
}

func TestHandleHelp(t *testing.T) {
	eg := &recordingEgress{}
	b := newTestBot(t, stubAnalyzer{}, eg)
	b.handle(context.Background(), "r", "u", parseCommand("!help", "!", fixedNow, "all"))
	if len(eg.msgs) != 1 || !strings.HasPrefix(eg.msgs[0].data, "usage: !stats") {
		t.Fatalf("unexpected help %+v", eg.msgs)
	}
}

func TestOnMessageRespectsRoomFilter(t *testing.T) {
	eg := &recordingEgress{}
	b := newTestBot(t, stubAnalyzer{rep: reportWithTimeline()}, eg)
	b.cfg.RoomAllowed = func(room string) bool { return room == "ok" }
	b.OnMessage(&irisfast.Message{Msg: "!전적 hikaru", Room: "blocked"})
	b.OnMessage(&irisfast.Message{Msg: "hello", Room: "ok"})
	b.OnMessage(nil)
	time.Sleep(50 * time.Millisecond)
	eg.mu.Lock()
	defer eg.mu.Unlock()
	if len(eg.msgs) != 0 {
		t.Fatalf("nothing should be sent, got %+v", eg.msgs)
	}
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pricetracker/internal/models"
)

type stubQuotes struct {
	prices map[string]string
	errs   map[string]error
	calls  []string
}

func (s *stubQuotes) GetSellPrice(ctx context.Context, tokenID string) (decimal.Decimal, error) {
	s.calls = append(s.calls, tokenID)
	if err, ok := s.errs[tokenID]; ok {
		return decimal.Zero, err
	}
	raw, ok := s.prices[tokenID]
	if !ok {
		return decimal.Zero, errors.New("no price configured")
	}
	return decimal.RequireFromString(raw), nil
}

func newCollector(repo *stubRepo, quotes *stubQuotes) *CollectorService {
	return &CollectorService{
		Repo: repo,
		Liveness: &LivenessService{
			Repo:   repo,
			Logger: zap.NewNop(),
			Config: livenessCfg(),
		},
		Quotes:          quotes,
		Logger:          zap.NewNop(),
		RequestInterval: time.Millisecond,
	}
}

func TestRunZeroTrackableGames(t *testing.T) {
	repo := newStubRepo()
	collector := newCollector(repo, &stubQuotes{})

	summary, err := collector.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := RunSummary{RunID: summary.RunID}
	if summary != want {
		t.Fatalf("summary = %+v, want all zero counts", summary)
	}
	if repo.insertCalls != 0 {
		t.Fatalf("insertCalls = %d, want 0 (no write for empty run)", repo.insertCalls)
	}
}

func TestRunEndToEnd(t *testing.T) {
	now := time.Now().UTC()
	games := []models.Game{
		makeGame(t, "g1", now.Add(time.Hour), []models.GameMarket{{
			Type:        models.MarketTypeMoneyline,
			ConditionID: "cond-1",
			Outcomes: []models.GameOutcome{
				{Label: strptr("Home"), TokenID: strptr("tok-home")},
				{Label: strptr("Away"), TokenID: strptr("tok-away")},
			},
		}}),
		makeGame(t, "g2", now.Add(2*time.Hour), []models.GameMarket{{
			Type:        models.MarketTypeMoneyline,
			ConditionID: "cond-2",
			Outcomes: []models.GameOutcome{
				{Label: strptr("Draw"), TokenID: strptr("tok-draw")},
			},
		}}),
	}
	repo := newStubRepo(games...)
	quotes := &stubQuotes{
		prices: map[string]string{
			"tok-home": "0.30",
			"tok-away": "0.70",
		},
		errs: map[string]error{
			"tok-draw": errors.New("connection reset"),
		},
	}
	collector := newCollector(repo, quotes)

	summary, err := collector.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.GamesProcessed != 2 || summary.Requests != 3 ||
		summary.Successes != 2 || summary.Failures != 1 || summary.Stored != 2 {
		t.Fatalf("summary = %+v, want {2 3 2 1 2}", summary)
	}
	if len(repo.observations) != 2 {
		t.Fatalf("observations stored = %d, want 2", len(repo.observations))
	}

	for token, want := range map[string]string{"tok-home": "0.3", "tok-away": "0.7"} {
		extreme, err := repo.GetPriceExtreme(context.Background(), "cond-1", token)
		if err != nil {
			t.Fatalf("GetPriceExtreme: %v", err)
		}
		if extreme == nil {
			t.Fatalf("missing extremes row for %s", token)
		}
		p := decimal.RequireFromString(want)
		if !extreme.LowestPrice.Equal(p) || !extreme.HighestPrice.Equal(p) || !extreme.CurrentPrice.Equal(p) {
			t.Fatalf("extremes for %s = %+v, want lowest=highest=current=%s", token, extreme, want)
		}
	}
	if e, _ := repo.GetPriceExtreme(context.Background(), "cond-2", "tok-draw"); e != nil {
		t.Fatalf("failed fetch must not create an extremes row, got %+v", e)
	}
}

func TestRunSharedTimestamp(t *testing.T) {
	now := time.Now().UTC()
	game := makeGame(t, "g1", now.Add(time.Hour), moneyline(
		models.GameOutcome{Label: strptr("Home"), TokenID: strptr("tok-home")},
		models.GameOutcome{Label: strptr("Away"), TokenID: strptr("tok-away")},
	))
	repo := newStubRepo(game)
	collector := newCollector(repo, &stubQuotes{prices: map[string]string{
		"tok-home": "0.30",
		"tok-away": "0.70",
	}})

	if _, err := collector.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	var seen *time.Time
	for _, o := range repo.observations {
		if o.Source != models.SourceREST {
			t.Fatalf("source = %q, want %q", o.Source, models.SourceREST)
		}
		if seen == nil {
			ts := o.TS
			seen = &ts
			continue
		}
		if !o.TS.Equal(*seen) {
			t.Fatalf("observations in one run must share a timestamp: %v vs %v", o.TS, *seen)
		}
	}
}

func TestRunOutOfRangePriceStoredAsReceived(t *testing.T) {
	now := time.Now().UTC()
	game := makeGame(t, "g1", now.Add(time.Hour), moneyline(
		models.GameOutcome{Label: strptr("Home"), TokenID: strptr("tok-home")},
	))
	repo := newStubRepo(game)
	collector := newCollector(repo, &stubQuotes{prices: map[string]string{"tok-home": "1.25"}})

	summary, err := collector.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Successes != 1 || summary.Stored != 1 {
		t.Fatalf("summary = %+v, want 1 success, 1 stored", summary)
	}
	for _, o := range repo.observations {
		if !o.Price.Equal(decimal.RequireFromString("1.25")) {
			t.Fatalf("price = %s, want 1.25 stored as received", o.Price)
		}
	}
}

func TestRunBatchRedeliveryIsNoOp(t *testing.T) {
	now := time.Now().UTC()
	game := makeGame(t, "g1", now.Add(time.Hour), moneyline(
		models.GameOutcome{Label: strptr("Home"), TokenID: strptr("tok-home")},
	))
	repo := newStubRepo(game)
	collector := newCollector(repo, &stubQuotes{prices: map[string]string{"tok-home": "0.40"}})

	if _, err := collector.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	var batch []models.PriceObservation
	for _, o := range repo.observations {
		batch = append(batch, o)
	}

	stored, err := repo.InsertPriceObservations(context.Background(), batch)
	if err != nil {
		t.Fatalf("re-delivery: %v", err)
	}
	if stored != 0 {
		t.Fatalf("re-delivered batch stored %d rows, want 0", stored)
	}
	if len(repo.observations) != 1 {
		t.Fatalf("observations = %d, want 1", len(repo.observations))
	}
}

func TestRunStoreFailurePropagates(t *testing.T) {
	now := time.Now().UTC()
	game := makeGame(t, "g1", now.Add(time.Hour), moneyline(
		models.GameOutcome{Label: strptr("Home"), TokenID: strptr("tok-home")},
	))
	repo := newStubRepo(game)
	repo.insertErr = errors.New("connection refused")
	collector := newCollector(repo, &stubQuotes{prices: map[string]string{"tok-home": "0.40"}})

	if _, err := collector.Run(context.Background()); err == nil {
		t.Fatal("expected batch write failure to propagate")
	}
}

package rank

import (
	"sort"
	"testing"

	"github.com/glowpages/spaseek/internal/domain/record"
	"github.com/glowpages/spaseek/internal/domain/search/result"
)

func floatPtr(f float64) *float64 { return &f }

func post(t *testing.T, id string, upvotes, comments float64, createdAt int64) result.Ranked {
	t.Helper()
	rec, err := record.NewPost(record.PostParams{
		ID: id, Title: "t",
		Upvotes:   floatPtr(upvotes),
		Comments:  floatPtr(comments),
		CreatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("build post: %v", err)
	}
	return result.New(rec, nil)
}

func rankedIDs(results []result.Ranked, m Mode) []string {
	less := Less(m)
	sort.Slice(results, func(i, j int) bool {
		return less(&results[i], &results[j])
	})
	ids := make([]string, len(results))
	for i := range results {
		ids[i] = results[i].Record().ID()
	}
	return ids
}

func assertOrder(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

// --- Mode ---

func TestMode_IsValid(t *testing.T) {
	for _, m := range []Mode{Latest, Popular, Trending, Distance} {
		if !m.IsValid() {
			t.Errorf("%q should be valid", m)
		}
	}
	if Mode("relevance").IsValid() {
		t.Error("unknown mode should be invalid")
	}
}

// --- Latest ---

func TestLess_Latest(t *testing.T) {
	results := []result.Ranked{
		post(t, "a", 0, 0, 100),
		post(t, "b", 0, 0, 300),
		post(t, "c", 0, 0, 200),
	}
	assertOrder(t, rankedIDs(results, Latest), []string{"b", "c", "a"})
}

func TestLess_Latest_TieByID(t *testing.T) {
	results := []result.Ranked{
		post(t, "z", 0, 0, 100),
		post(t, "a", 0, 0, 100),
		post(t, "m", 0, 0, 100),
	}
	assertOrder(t, rankedIDs(results, Latest), []string{"a", "m", "z"})
}

// --- Popular ---

func TestLess_Popular(t *testing.T) {
	results := []result.Ranked{
		post(t, "a", 10, 0, 0),
		post(t, "b", 50, 0, 0),
		post(t, "c", 30, 0, 0),
	}
	assertOrder(t, rankedIDs(results, Popular), []string{"b", "c", "a"})
}

// --- Trending ---

func TestTrendingScore(t *testing.T) {
	if got := TrendingScore(10, 5); got != 20 {
		t.Errorf("TrendingScore(10, 5) = %v, want 20", got)
	}
	if got := TrendingScore(0, 0); got != 0 {
		t.Errorf("TrendingScore(0, 0) = %v, want 0", got)
	}
}

func TestLess_Trending_SecondaryDoubled(t *testing.T) {
	// a: 10 + 2*0 = 10, b: 0 + 2*6 = 12. Comments outweigh upvotes here.
	results := []result.Ranked{
		post(t, "a", 10, 0, 0),
		post(t, "b", 0, 6, 0),
	}
	assertOrder(t, rankedIDs(results, Trending), []string{"b", "a"})
}

func TestLess_Trending_TieByID(t *testing.T) {
	// Equal composites: 10 + 2*1 = 12 and 0 + 2*6 = 12.
	results := []result.Ranked{
		post(t, "b", 0, 6, 0),
		post(t, "a", 10, 1, 0),
	}
	assertOrder(t, rankedIDs(results, Trending), []string{"a", "b"})
}

// --- Distance ---

func TestLess_Distance(t *testing.T) {
	mk := func(id string, km *float64) result.Ranked {
		rec, err := record.NewPost(record.PostParams{ID: id, Title: "t"})
		if err != nil {
			t.Fatalf("build post: %v", err)
		}
		return result.New(rec, km)
	}

	results := []result.Ranked{
		mk("far", floatPtr(12.5)),
		mk("nowhere", nil),
		mk("near", floatPtr(0.3)),
		mk("mid", floatPtr(4.0)),
	}
	assertOrder(t, rankedIDs(results, Distance), []string{"near", "mid", "far", "nowhere"})
}

func TestLess_Distance_NilsAndTiesByID(t *testing.T) {
	mk := func(id string, km *float64) result.Ranked {
		rec, err := record.NewPost(record.PostParams{ID: id, Title: "t"})
		if err != nil {
			t.Fatalf("build post: %v", err)
		}
		return result.New(rec, km)
	}

	results := []result.Ranked{
		mk("b-none", nil),
		mk("a-none", nil),
		mk("b-two", floatPtr(2)),
		mk("a-two", floatPtr(2)),
	}
	assertOrder(t, rankedIDs(results, Distance), []string{"a-two", "b-two", "a-none", "b-none"})
}

// --- Determinism ---

func TestLess_Deterministic(t *testing.T) {
	build := func() []result.Ranked {
		return []result.Ranked{
			post(t, "c", 5, 2, 300),
			post(t, "a", 5, 2, 300),
			post(t, "b", 5, 2, 300),
		}
	}

	for _, m := range []Mode{Latest, Popular, Trending} {
		first := rankedIDs(build(), m)
		second := rankedIDs(build(), m)
		assertOrder(t, second, first)
		// Identical facets everywhere: order falls back to ID.
		assertOrder(t, first, []string{"a", "b", "c"})
	}
}

func TestLess_StrictOrder(t *testing.T) {
	a := post(t, "a", 5, 2, 300)
	b := post(t, "b", 5, 2, 300)

	for _, m := range []Mode{Latest, Popular, Trending, Distance} {
		less := Less(m)
		if less(&a, &b) && less(&b, &a) {
			t.Errorf("mode %q: comparator is not a strict order", m)
		}
		if !less(&a, &b) && !less(&b, &a) {
			t.Errorf("mode %q: distinct records compare equal", m)
		}
	}
}

package solver

import (
	"sync"
	"testing"
)

func TestStrategyNormalizesPositiveRegrets(t *testing.T) {
	var entry Entry
	entry.Regrets[0] = 1
	entry.Regrets[1] = 2
	entry.Regrets[2] = -5

	strat := entry.Strategy([]int{0, 1, 2}, nil)

	if got, want := strat[0], 1.0/3.0; abs(got-want) > 1e-9 {
		t.Fatalf("expected first action %v, got %v", want, got)
	}
	if got, want := strat[1], 2.0/3.0; abs(got-want) > 1e-9 {
		t.Fatalf("expected second action %v, got %v", want, got)
	}
	if strat[2] != 0 {
		t.Fatalf("expected negative regret action to drop to 0, got %v", strat[2])
	}
}

func TestStrategySumsToOneOverLegal(t *testing.T) {
	var entry Entry
	entry.Regrets[3] = 4
	entry.Regrets[7] = 1

	legal := []int{3, 5, 7}
	strat := entry.Strategy(legal, nil)
	sum := 0.0
	for _, a := range legal {
		sum += strat[a]
	}
	if abs(sum-1) > 1e-9 {
		t.Fatalf("strategy sums to %v, want 1", sum)
	}
	for a := 0; a < NumActions; a++ {
		if a != 3 && a != 5 && a != 7 && strat[a] != 0 {
			t.Fatalf("illegal action %d carries probability %v", a, strat[a])
		}
	}
}

func TestStrategyUniformFallback(t *testing.T) {
	var entry Entry
	entry.Regrets[1] = -3 // all regrets non-positive

	legal := []int{0, 1, 9}
	strat := entry.Strategy(legal, nil)
	for _, a := range legal {
		if abs(strat[a]-1.0/3.0) > 1e-9 {
			t.Fatalf("expected uniform fallback at action %d, got %v", a, strat[a])
		}
	}
}

func TestUpdateAccumulatesWeighted(t *testing.T) {
	var entry Entry
	legal := []int{0, 2}
	delta := make([]float64, NumActions)
	strat := make([]float64, NumActions)
	delta[0], delta[2] = 1, -1
	strat[0], strat[2] = 0.6, 0.4

	entry.Update(legal, delta, strat, 3)

	if entry.Regrets[0] != 3 || entry.Regrets[2] != -3 {
		t.Fatalf("unexpected regrets: %+v", entry.Regrets)
	}
	if abs(entry.StrategySum[0]-1.8) > 1e-9 || abs(entry.StrategySum[2]-1.2) > 1e-9 {
		t.Fatalf("unexpected strategy sums: %+v", entry.StrategySum)
	}
}

func TestAverageNormalizesAndFallsBack(t *testing.T) {
	var entry Entry
	entry.StrategySum[1] = 3
	entry.StrategySum[4] = 1

	avg := entry.Average([]int{1, 4}, nil)
	if abs(avg[1]-0.75) > 1e-9 || abs(avg[4]-0.25) > 1e-9 {
		t.Fatalf("unexpected average: %+v", avg)
	}

	var empty Entry
	avg = empty.Average([]int{0, 1}, nil)
	if abs(avg[0]-0.5) > 1e-9 || abs(avg[1]-0.5) > 1e-9 {
		t.Fatalf("expected uniform average fallback, got %+v", avg)
	}
}

func TestTableGetCreatesOnce(t *testing.T) {
	table := NewTable()
	a := table.Get([]byte("3;bc"))
	b := table.Get([]byte("3;bc"))
	if a != b {
		t.Fatal("same key returned different entries")
	}
	if table.Size() != 1 {
		t.Fatalf("expected size 1, got %d", table.Size())
	}
	if _, ok := table.Lookup([]byte("3;bc")); !ok {
		t.Fatal("lookup missed existing key")
	}
	if _, ok := table.Lookup([]byte("4;bc")); ok {
		t.Fatal("lookup found missing key")
	}
}

func TestTableConcurrentGet(t *testing.T) {
	table := NewTable()
	var wg sync.WaitGroup
	keys := [][]byte{[]byte("1;a"), []byte("2;b"), []byte("3;c")}
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			delta := make([]float64, NumActions)
			strat := make([]float64, NumActions)
			delta[0], strat[0] = 1, 1
			for i := 0; i < 1000; i++ {
				entry := table.Get(keys[i%len(keys)])
				entry.Update([]int{0}, delta, strat, 1)
			}
		}()
	}
	wg.Wait()

	if table.Size() != len(keys) {
		t.Fatalf("expected %d entries, got %d", len(keys), table.Size())
	}
	total := 0.0
	table.Range(func(_ string, e *Entry) bool {
		total += e.Regrets[0]
		return true
	})
	if total != 8*1000 {
		t.Fatalf("lost updates: total regret %v, want %v", total, 8*1000)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

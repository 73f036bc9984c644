package solver

import (
	"context"
	"math"
	"testing"
)

func TestEvaluateZeroSum(t *testing.T) {
	policy, err := NewPolicy(trainedBlueprint(t, 200))
	if err != nil {
		t.Fatal(err)
	}

	res, err := Evaluate(context.Background(), kuhnGame, policy, 2000, 11)
	if err != nil {
		t.Fatal(err)
	}

	sum := 0.0
	for p := 0; p < NumPlayers; p++ {
		sum += res.MeanMBB[p]
	}
	if math.Abs(sum) > 1e-6 {
		t.Errorf("mean winnings sum to %v mbb/g, want 0", sum)
	}
}

func TestEvaluateBlockBootstrapShape(t *testing.T) {
	policy, err := NewPolicy(trainedBlueprint(t, 50))
	if err != nil {
		t.Fatal(err)
	}

	hands := 900
	res, err := Evaluate(context.Background(), kuhnGame, policy, hands, 3)
	if err != nil {
		t.Fatal(err)
	}
	if res.Hands != hands {
		t.Errorf("played %d hands, want %d", res.Hands, hands)
	}
	if want := 30; res.BlockSize != want {
		t.Errorf("block size %d, want sqrt(%d)=%d", res.BlockSize, hands, want)
	}
	if res.Blocks != hands/res.BlockSize {
		t.Errorf("blocks %d, want %d", res.Blocks, hands/res.BlockSize)
	}
	for p := 0; p < NumPlayers; p++ {
		if res.StdErrMBB[p] < 0 {
			t.Errorf("negative standard error for player %d", p)
		}
		low, high := res.ConfidenceInterval(p)
		if low > res.MeanMBB[p] || high < res.MeanMBB[p] {
			t.Errorf("CI [%v,%v] excludes mean %v", low, high, res.MeanMBB[p])
		}
	}
}

func TestEvaluateDeterministicForSeed(t *testing.T) {
	policy, err := NewPolicy(trainedBlueprint(t, 50))
	if err != nil {
		t.Fatal(err)
	}
	a, err := Evaluate(context.Background(), kuhnGame, policy, 500, 42)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Evaluate(context.Background(), kuhnGame, policy, 500, 42)
	if err != nil {
		t.Fatal(err)
	}
	if a.MeanMBB != b.MeanMBB {
		t.Errorf("same seed produced different results: %v vs %v", a.MeanMBB, b.MeanMBB)
	}
}

func TestEvaluateRejectsBadInput(t *testing.T) {
	policy, err := NewPolicy(trainedBlueprint(t, 10))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Evaluate(context.Background(), kuhnGame, policy, 0, 1); err == nil {
		t.Error("expected error for zero hands")
	}
	if _, err := Evaluate(context.Background(), kuhnGame, nil, 10, 1); err == nil {
		t.Error("expected error for nil policy")
	}
}

func TestPolicyUniformFallbackOnUnseenKey(t *testing.T) {
	policy, err := NewPolicy(trainedBlueprint(t, 10))
	if err != nil {
		t.Fatal(err)
	}
	legal := []int{0, 1, 9}
	probs := policy.ActionProbs([]byte("999;zzz"), legal, nil)
	for _, a := range legal {
		if abs(probs[a]-1.0/3.0) > 1e-9 {
			t.Errorf("expected uniform fallback, got %v", probs)
		}
	}
}

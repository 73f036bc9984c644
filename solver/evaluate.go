package solver

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/lox/pokerblueprint/internal/randutil"
)

// EvalResult reports self-play performance per seat in milli-big-blinds per
// game with block-bootstrap standard errors.
type EvalResult struct {
	Hands     int
	BlockSize int
	Blocks    int

	MeanMBB   [NumPlayers]float64
	StdErrMBB [NumPlayers]float64
}

// ConfidenceInterval returns the 95% CI for a seat's win rate in mbb/g.
func (r *EvalResult) ConfidenceInterval(player int) (low, high float64) {
	const z = 1.96
	return r.MeanMBB[player] - z*r.StdErrMBB[player], r.MeanMBB[player] + z*r.StdErrMBB[player]
}

// Evaluate plays hands of self-play with every seat sampling from the frozen
// policy and reports mbb/g per seat. The standard error comes from block
// bootstrapping with a block size of about sqrt(hands), which is robust to
// the mild dependence introduced by shared info sets.
func Evaluate(ctx context.Context, newGame func() Game, policy *Policy, hands int, seed int64) (*EvalResult, error) {
	if hands <= 0 {
		return nil, errors.New("hands must be > 0")
	}
	if policy == nil {
		return nil, errors.New("nil policy")
	}

	blockSize := int(math.Round(math.Sqrt(float64(hands))))
	if blockSize < 1 {
		blockSize = 1
	}

	rng := randutil.New(seed)
	game := newGame()

	var (
		legalBuf   = make([]int, 0, NumActions)
		probsBuf   = make([]float64, NumActions)
		keyBuf     = make([]byte, 0, 64)
		payoffBuf  = make([]float64, NumPlayers)
		blockMeans [][NumPlayers]float64
		current    [NumPlayers]float64
		inBlock    int
	)

	for n := 0; n < hands; n++ {
		if n%1024 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		game.DealNewHand(rng)
		for !game.IsTerminal() {
			if game.IsChanceNode() {
				game.SampleChance(rng)
				continue
			}
			player := game.CurrentPlayer()
			legal := game.LegalActions(legalBuf)
			if len(legal) == 0 {
				return nil, fmt.Errorf("no legal actions during evaluation (player %d)", player)
			}
			key := game.InfoKey(player, keyBuf[:0])
			game.ApplyAction(policy.SampleAction(key, legal, probsBuf, rng))
		}

		payoffs := game.Payoffs(payoffBuf)
		for p := 0; p < NumPlayers; p++ {
			current[p] += payoffs[p]
		}
		inBlock++
		if inBlock >= blockSize {
			var mean [NumPlayers]float64
			for p := 0; p < NumPlayers; p++ {
				mean[p] = current[p] / float64(inBlock)
				current[p] = 0
			}
			blockMeans = append(blockMeans, mean)
			inBlock = 0
		}
	}
	if inBlock > 0 {
		var mean [NumPlayers]float64
		for p := 0; p < NumPlayers; p++ {
			mean[p] = current[p] / float64(inBlock)
		}
		blockMeans = append(blockMeans, mean)
	}

	result := &EvalResult{Hands: hands, BlockSize: blockSize, Blocks: len(blockMeans)}
	nb := float64(len(blockMeans))
	for p := 0; p < NumPlayers; p++ {
		sum := 0.0
		for _, b := range blockMeans {
			sum += b[p]
		}
		mean := sum / nb
		variance := 0.0
		for _, b := range blockMeans {
			variance += (b[p] - mean) * (b[p] - mean)
		}
		variance /= nb
		result.MeanMBB[p] = mean * 1000
		result.StdErrMBB[p] = math.Sqrt(variance/nb) * 1000
	}
	return result, nil
}

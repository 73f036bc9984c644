package kuhn

import "github.com/lox/pokerblueprint/abstraction"

// StrategyFunc returns a probability distribution over the legal actions for
// an info-set key, aligned with the legal slice.
type StrategyFunc func(key []byte, legal []int) []float64

// numDeals is the number of ordered deals of 3 distinct cards from 4.
const numDeals = DeckSize * (DeckSize - 1) * (DeckSize - 2)

// deals enumerates every ordered deal once.
func deals() [][NumPlayers]int {
	out := make([][NumPlayers]int, 0, numDeals)
	for a := 0; a < DeckSize; a++ {
		for b := 0; b < DeckSize; b++ {
			for c := 0; c < DeckSize; c++ {
				if a == b || a == c || b == c {
					continue
				}
				out = append(out, [NumPlayers]int{a, b, c})
			}
		}
	}
	return out
}

// NashConv is the exploitability of a strategy profile: the sum over players
// of the best-response value against the other players' strategies. It is
// zero at a Nash equilibrium and decreases as training converges.
func NashConv(profile StrategyFunc) float64 {
	total := 0.0
	for p := 0; p < NumPlayers; p++ {
		total += BestResponseValue(profile, p)
	}
	return total
}

// BestResponseValue computes the exact expected value the br player achieves
// by best-responding to the profile, with the deal uniform over the 24
// orderings.
func BestResponseValue(profile StrategyFunc, br int) float64 {
	allDeals := deals()
	reach := make([]float64, numDeals)
	for d := range reach {
		reach[d] = 1.0 / numDeals
	}
	values := brWalk(profile, br, allDeals, nil, reach)
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

// brWalk returns, per deal, the reach-weighted utility to the br player when
// br best-responds and everyone else follows the profile. Best-response
// decisions maximize over all deals consistent with the same info set (card),
// which is exactly what the per-card argmax below does.
func brWalk(profile StrategyFunc, br int, allDeals [][NumPlayers]int, history []int, reach []float64) []float64 {
	out := make([]float64, numDeals)
	if terminal(history) {
		var payoff [NumPlayers]float64
		for d, deal := range allDeals {
			if reach[d] == 0 {
				continue
			}
			payoffs(deal, history, payoff[:])
			out[d] = reach[d] * payoff[br]
		}
		return out
	}

	player := nextPlayer(history)
	legal := []int{ActionPass, ActionBet}

	if player != br {
		// Opponents mix according to the profile; their strategy depends on
		// their card, so the reach splits per deal.
		hist := encodeHistory(history)
		var keyBuf []byte
		for _, action := range legal {
			next := make([]float64, numDeals)
			for d, deal := range allDeals {
				if reach[d] == 0 {
					continue
				}
				keyBuf = abstraction.InfoKey(keyBuf[:0], deal[player], hist)
				sigma := profile(keyBuf, legal)
				next[d] = reach[d] * sigma[action]
			}
			sub := brWalk(profile, br, allDeals, append(history, action), next)
			for d := range out {
				out[d] += sub[d]
			}
		}
		return out
	}

	// Best responder: evaluate every action over unchanged reach, then pick
	// the best action separately for each private card.
	perAction := make([][]float64, len(legal))
	for i, action := range legal {
		perAction[i] = brWalk(profile, br, allDeals, append(history, action), reach)
	}
	for card := 0; card < DeckSize; card++ {
		bestAction, bestValue := -1, 0.0
		for i := range legal {
			v := 0.0
			for d, deal := range allDeals {
				if deal[br] == card {
					v += perAction[i][d]
				}
			}
			if bestAction < 0 || v > bestValue {
				bestAction, bestValue = i, v
			}
		}
		for d, deal := range allDeals {
			if deal[br] == card {
				out[d] = perAction[bestAction][d]
			}
		}
	}
	return out
}

func encodeHistory(history []int) []byte {
	hist := make([]byte, len(history))
	for i, a := range history {
		hist[i] = abstraction.HistoryActionByte(a)
	}
	return hist
}

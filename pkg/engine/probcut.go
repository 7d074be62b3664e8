package engine

import (
	"github.com/othex/othex/pkg/othello"
)

// selectivityTable maps a selectivity level to the confidence factor t
// of the cut test. Level 5 never cuts.
var selectivityTable = [NoSelectivity + 1]struct {
	t       float64
	percent int
}{
	{1.1, 73},
	{1.5, 87},
	{2.0, 95},
	{2.6, 98},
	{3.3, 99},
	{999.0, 100},
}

// SelectivityPercent reports the nominal confidence of a selectivity
// level, for display.
func SelectivityPercent(level int) int {
	if level < 0 {
		level = 0
	}
	if level > NoSelectivity {
		level = NoSelectivity
	}
	return selectivityTable[level].percent
}

// probcutSigma models the standard error between a search at depth and
// one at probcutDepth, fitted over millions of game positions.
func probcutSigma(nEmpties, depth, probcutDepth int) float64 {
	var s = -0.10026799*float64(nEmpties) + 0.31027733*float64(depth) - 0.57772603*float64(probcutDepth)
	return 0.07640862*s*s + 1.16242555*s + 5.63276016
}

// probcut tries to settle the null window (alpha, alpha+1) with a
// reduced depth search. The error model widens the tested window, so
// the cut holds with the probability of the selectivity level.
func (s *Search) probcut(alpha, depth int) (int, bool) {
	if s.selectivity >= NoSelectivity || s.probcutLevel >= 2 ||
		depth < s.engine.opts.ProbcutDepth {
		return 0, false
	}
	var probcutDepth = 2*int(0.25*float64(depth)) + (depth & 1)
	if probcutDepth == 0 {
		probcutDepth = depth - 2
	}
	var t = selectivityTable[s.selectivity].t
	var probcutError = int(t*probcutSigma(s.nEmpties, depth, probcutDepth) + 0.5)
	var evalError = int(t*(probcutSigma(s.nEmpties, depth, 0)+probcutSigma(s.nEmpties, probcutDepth, 0))*0.5 + 0.5)
	var evalScore = s.evaluate0()
	var beta = alpha + 1

	var probcutBeta = beta + probcutError
	if probcutBeta < othello.ScoreMax && evalScore >= beta-evalError {
		s.probcutLevel++
		var score = s.nwsMidgame(probcutBeta-1, probcutDepth)
		s.probcutLevel--
		if score >= probcutBeta {
			return beta, true
		}
	}
	var probcutAlpha = alpha - probcutError
	if probcutAlpha > othello.ScoreMin && evalScore < alpha+evalError {
		s.probcutLevel++
		var score = s.nwsMidgame(probcutAlpha, probcutDepth)
		s.probcutLevel--
		if score <= probcutAlpha {
			return alpha, true
		}
	}
	return 0, false
}

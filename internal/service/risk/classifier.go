package risk

import (
	"math"
	"sort"
)

// Classifier is a regularized logistic regression fitted by full-batch
// gradient descent over standardized features. Training is deterministic:
// zero-initialized weights, a fixed epoch count and learning rate, and no
// shuffling, so the same table always yields the same artifact.
type Classifier struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
	Means   []float64 `json:"means"`
	Stds    []float64 `json:"stds"`
}

const (
	gdEpochs       = 500
	gdLearningRate = 0.1
	gdL2           = 1e-4
)

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// Fit trains on X (rows of features) and binary labels y.
func (c *Classifier) Fit(X [][]float64, y []float64) {
	n := len(X)
	if n == 0 {
		return
	}
	dim := len(X[0])

	c.Means = make([]float64, dim)
	c.Stds = make([]float64, dim)
	for j := 0; j < dim; j++ {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += X[i][j]
		}
		c.Means[j] = sum / float64(n)

		variance := 0.0
		for i := 0; i < n; i++ {
			d := X[i][j] - c.Means[j]
			variance += d * d
		}
		c.Stds[j] = math.Sqrt(variance / float64(n))
		if c.Stds[j] == 0 {
			c.Stds[j] = 1
		}
	}

	scaled := make([][]float64, n)
	for i := range X {
		scaled[i] = c.scale(X[i])
	}

	c.Weights = make([]float64, dim)
	c.Bias = 0
	for epoch := 0; epoch < gdEpochs; epoch++ {
		gradW := make([]float64, dim)
		gradB := 0.0
		for i := 0; i < n; i++ {
			z := c.Bias
			for j := 0; j < dim; j++ {
				z += c.Weights[j] * scaled[i][j]
			}
			diff := sigmoid(z) - y[i]
			for j := 0; j < dim; j++ {
				gradW[j] += diff * scaled[i][j]
			}
			gradB += diff
		}
		for j := 0; j < dim; j++ {
			c.Weights[j] -= gdLearningRate * (gradW[j]/float64(n) + gdL2*c.Weights[j])
		}
		c.Bias -= gdLearningRate * gradB / float64(n)
	}
}

func (c *Classifier) scale(x []float64) []float64 {
	out := make([]float64, len(x))
	for j := range x {
		out[j] = (x[j] - c.Means[j]) / c.Stds[j]
	}
	return out
}

// Prob returns the probability of the positive (outbreak) class.
func (c *Classifier) Prob(x []float64) float64 {
	z := c.Bias
	scaled := c.scale(x)
	for j := range scaled {
		z += c.Weights[j] * scaled[j]
	}
	return sigmoid(z)
}

// Importances returns per-feature weight magnitudes normalized to sum to 1.
func (c *Classifier) Importances() []float64 {
	total := 0.0
	for _, w := range c.Weights {
		total += math.Abs(w)
	}

	out := make([]float64, len(c.Weights))
	if total == 0 {
		return out
	}
	for i, w := range c.Weights {
		out[i] = math.Abs(w) / total
	}
	return out
}

type split struct {
	trainEnd int
	testEnd  int
}

// walkForwardSplits produces time-ordered folds: fold i trains on rows
// [0, trainEnd) and evaluates on [trainEnd, testEnd). Evaluation windows are
// always strictly later than their training span.
func walkForwardSplits(n, folds int) []split {
	testSize := n / (folds + 1)
	if testSize == 0 {
		return nil
	}

	out := make([]split, 0, folds)
	for i := 0; i < folds; i++ {
		trainEnd := n - (folds-i)*testSize
		if trainEnd <= 0 {
			continue
		}
		out = append(out, split{trainEnd: trainEnd, testEnd: trainEnd + testSize})
	}
	return out
}

// auc is the probability that a random positive scores above a random
// negative, computed from average ranks. Returns 0 when the labels are
// single-class.
func auc(y, scores []float64) float64 {
	type pair struct {
		score float64
		label float64
	}
	pairs := make([]pair, len(y))
	for i := range y {
		pairs[i] = pair{scores[i], y[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].score < pairs[j].score })

	pos, neg := 0.0, 0.0
	for _, p := range pairs {
		if p.label > 0 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return 0
	}

	rankSum := 0.0
	i := 0
	for i < len(pairs) {
		j := i
		for j < len(pairs) && pairs[j].score == pairs[i].score {
			j++
		}
		avgRank := float64(i+j+1) / 2 // 1-based average rank of the tie group
		for k := i; k < j; k++ {
			if pairs[k].label > 0 {
				rankSum += avgRank
			}
		}
		i = j
	}

	return (rankSum - pos*(pos+1)/2) / (pos * neg)
}

// foldMetrics scores the fold at the 0.5 decision threshold.
func foldMetrics(y, scores []float64) (precision, recall, f1 float64) {
	var tp, fp, fn float64
	for i := range y {
		predicted := scores[i] >= 0.5
		actual := y[i] > 0
		switch {
		case predicted && actual:
			tp++
		case predicted && !actual:
			fp++
		case !predicted && actual:
			fn++
		}
	}

	if tp+fp > 0 {
		precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		recall = tp / (tp + fn)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return
}

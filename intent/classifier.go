package intent

import (
	"math"
	"strings"
	"unicode"
)

// Terms must appear in at least this many training examples to enter the
// vocabulary. Keeps one-off phrasings from becoming features.
const minTermDocs = 2

// normalize lowercases, strips punctuation and drops words shorter than
// three characters. Training examples and incoming queries pass through the
// same normalization so they live in the same term space.
func normalize(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	words := strings.Fields(b.String())
	kept := words[:0]
	for _, w := range words {
		if len(w) > 2 {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// terms produces unigram and bigram features of normalized text.
func terms(clean string) []string {
	words := strings.Fields(clean)
	out := make([]string, 0, len(words)*2)
	out = append(out, words...)
	for i := 0; i+1 < len(words); i++ {
		out = append(out, words[i]+" "+words[i+1])
	}
	return out
}

// classifier scores queries by cosine similarity against per-intent TF-IDF
// centroids. Small and dependency free, which matters more here than squeezing
// out the last few points of accuracy: the pattern fallback catches what the
// model misses.
type classifier struct {
	vocab     map[string]int
	idf       []float64
	centroids map[string][]float64
}

func trainClassifier(examples []Example) *classifier {
	docs := make([][]string, len(examples))
	df := make(map[string]int)
	for i, ex := range examples {
		docs[i] = terms(ex.Text)
		seen := make(map[string]bool)
		for _, t := range docs[i] {
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}

	c := &classifier{
		vocab:     make(map[string]int),
		centroids: make(map[string][]float64),
	}
	for t, n := range df {
		if n >= minTermDocs {
			c.vocab[t] = len(c.vocab)
		}
	}
	if len(c.vocab) == 0 {
		return nil
	}

	total := float64(len(docs))
	c.idf = make([]float64, len(c.vocab))
	for t, i := range c.vocab {
		c.idf[i] = math.Log((1+total)/(1+float64(df[t]))) + 1
	}

	sums := make(map[string][]float64)
	counts := make(map[string]int)
	for i, ex := range examples {
		vec := c.vectorize(docs[i])
		if vec == nil {
			continue
		}
		sum := sums[ex.Intent]
		if sum == nil {
			sum = make([]float64, len(c.vocab))
			sums[ex.Intent] = sum
		}
		for j, v := range vec {
			sum[j] += v
		}
		counts[ex.Intent]++
	}
	for intent, sum := range sums {
		if counts[intent] == 0 {
			continue
		}
		l2Normalize(sum)
		c.centroids[intent] = sum
	}
	if len(c.centroids) == 0 {
		return nil
	}
	return c
}

// vectorize builds an L2-normalized TF-IDF vector, or nil when no term is in
// the vocabulary.
func (c *classifier) vectorize(ts []string) []float64 {
	vec := make([]float64, len(c.vocab))
	hit := false
	for _, t := range ts {
		if i, ok := c.vocab[t]; ok {
			vec[i]++
			hit = true
		}
	}
	if !hit {
		return nil
	}
	for i := range vec {
		vec[i] *= c.idf[i]
	}
	l2Normalize(vec)
	return vec
}

// predict returns the best-matching intent for normalized text and the cosine
// similarity to its centroid. An empty intent means the query shares no
// vocabulary with the training data.
func (c *classifier) predict(clean string) (string, float64) {
	vec := c.vectorize(terms(clean))
	if vec == nil {
		return "", 0
	}
	best := ""
	bestScore := 0.0
	for intent, centroid := range c.centroids {
		score := dot(vec, centroid)
		if score > bestScore {
			best = intent
			bestScore = score
		}
	}
	return best, bestScore
}

func l2Normalize(vec []float64) {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

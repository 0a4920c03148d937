package ulasan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trainingCorpus returns two clearly separated classes sharing one word.
func trainingCorpus() ([]string, []int) {
	pos := []string{"bagus", "cepat", "puas", "lancar", "mantap"}
	neg := []string{"rusak", "lambat", "kecewa", "error", "lemot"}
	var texts []string
	var y []int
	for i := 0; i < 10; i++ {
		texts = append(texts, pos[i%5]+" "+pos[(i+1)%5]+" aplikasi")
		y = append(y, 1)
		texts = append(texts, neg[i%5]+" "+neg[(i+1)%5]+" aplikasi")
		y = append(y, 0)
	}
	return texts, y
}

func accuracy(y, pred []int) float64 {
	correct := 0
	for i := range y {
		if y[i] == pred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(y))
}

var testSearch = SearchConfig{MaxFolds: 3, Workers: 2}

func testSVMConfig() SVMConfig {
	return SVMConfig{
		Vectorizer:       TFIDFConfig{NGramMin: 1, NGramMax: 2, MinDF: 1, MaxDF: 1, SublinearTF: true},
		C:                []float64{0.5, 1},
		ClassWeights:     []ClassWeightMode{NoClassWeight, BalancedClassWeight},
		CalibrationFolds: 2,
		MaxIter:          200,
	}
}

func testReducedConfig() ReducedConfig {
	return ReducedConfig{
		Vectorizer: TFIDFConfig{NGramMin: 1, NGramMax: 1, MinDF: 1, MaxDF: 1},
		C:          []float64{1},
		MaxIter:    300,
	}
}

func TestSVMTrainerCandidates(t *testing.T) {
	trainer := NewSVMTrainer(testSVMConfig(), testSearch, nil)
	assert.Equal(t, []SVMParams{
		{C: 0.5, ClassWeight: NoClassWeight},
		{C: 0.5, ClassWeight: BalancedClassWeight},
		{C: 1, ClassWeight: NoClassWeight},
		{C: 1, ClassWeight: BalancedClassWeight},
	}, trainer.Candidates())
}

func TestSVMTrainer(t *testing.T) {
	texts, y := trainingCorpus()
	result, err := NewSVMTrainer(testSVMConfig(), testSearch, nil).Train(context.Background(), texts, y, 2)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Search.Folds)
	assert.Len(t, result.Search.Candidates, 4)
	assert.Contains(t, []float64{0.5, 1}, result.Params.C)
	assert.Equal(t, SVMTFIDF, result.Model.Kind())
	assert.GreaterOrEqual(t, accuracy(y, result.Model.Predict(texts)), 0.9)

	for _, proba := range result.Model.PredictProba(texts[:2]) {
		assert.Len(t, proba, 2)
	}
}

func TestSVMTrainerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	texts, y := trainingCorpus()
	_, err := NewSVMTrainer(testSVMConfig(), testSearch, nil).Train(ctx, texts, y, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReducedCandidates(t *testing.T) {
	tests := []struct {
		n     int
		ks    []int
		comps []int
		desc  string
	}{
		{3, []int{2}, []int{2}, "smallest vocabulary"},
		{50, []int{25, 49}, []int{16, 25}, "small regime"},
		{300, []int{150, 200}, []int{50, 100}, "medium regime"},
		{3000, []int{800, 1500}, []int{150, 300}, "large regime"},
		{600, []int{599}, []int{150, 300}, "large regime clamped"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			candidates, err := ReducedCandidates(tt.n, []float64{0.5, 1})
			require.NoError(t, err)
			require.Len(t, candidates, 2*len(tt.ks)*len(tt.comps))

			i := 0
			for _, c := range []float64{0.5, 1} {
				for _, k := range tt.ks {
					for _, nc := range tt.comps {
						assert.Equal(t, ReducedParams{C: c, K: k, NComponents: nc}, candidates[i])
						i++
					}
				}
			}
		})
	}
}

func TestReducedCandidatesStayBelowVocabulary(t *testing.T) {
	for n := 3; n <= 2000; n++ {
		candidates, err := ReducedCandidates(n, []float64{1})
		require.NoError(t, err)
		for _, p := range candidates {
			require.Less(t, p.K, n, "k for vocabulary %d", n)
			require.Less(t, p.NComponents, n, "components for vocabulary %d", n)
			require.GreaterOrEqual(t, p.K, 2)
			require.GreaterOrEqual(t, p.NComponents, 2)
		}
	}

	_, err := ReducedCandidates(2, []float64{1})
	assert.ErrorIs(t, err, ErrVocabularyTooSmall)
}

func TestReducedTrainer(t *testing.T) {
	texts, y := trainingCorpus()
	result, err := NewReducedTrainer(testReducedConfig(), testSearch, nil).Train(context.Background(), texts, y, 2)
	require.NoError(t, err)

	assert.Equal(t, 11, result.VocabularySize)
	assert.Len(t, result.Search.Candidates, 4)
	assert.Less(t, result.Params.K, 11)
	assert.Less(t, result.Params.NComponents, 11)
	assert.Equal(t, ReducedLogistic, result.Model.Kind())
	assert.GreaterOrEqual(t, accuracy(y, result.Model.Predict(texts)), 0.9)
}

func TestReducedTrainerTinyVocabulary(t *testing.T) {
	var texts []string
	var y []int
	for i := 0; i < 4; i++ {
		texts = append(texts, "aplikasi bagus", "aplikasi rusak")
		y = append(y, 1, 0)
	}
	result, err := NewReducedTrainer(testReducedConfig(), testSearch, nil).Train(context.Background(), texts, y, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, result.VocabularySize)
	assert.Less(t, result.Params.K, 3)
	assert.Less(t, result.Params.NComponents, 3)
	assert.Less(t, result.Model.SVD.NComponents, result.Model.Selector.K)
}

func TestReducedTrainerRejectsTwoTerms(t *testing.T) {
	texts := []string{"bagus", "rusak", "bagus", "rusak"}
	y := []int{1, 0, 1, 0}
	_, err := NewReducedTrainer(testReducedConfig(), testSearch, nil).Train(context.Background(), texts, y, 2)
	assert.ErrorIs(t, err, ErrVocabularyTooSmall)
}

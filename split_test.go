package ulasan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datasetWithLabels(labels ...Polarity) LabeledDataset {
	d := LabeledDataset{}
	for i, l := range labels {
		r := LabeledReview{Polarity: PolarityResult{Label: l}}
		r.Content = string(rune('a' + i))
		r.FinalText = r.Content
		d.Reviews = append(d.Reviews, r)
	}
	return d
}

func TestSplitDatasetStratified(t *testing.T) {
	d := datasetWithLabels(
		Positive, Positive, Positive, Positive, Positive, Positive,
		Negative, Negative, Negative, Negative,
	)
	split, err := SplitDataset(d, 0.2, 42)
	require.NoError(t, err)

	assert.True(t, split.Stratified)
	assert.Equal(t, 8, split.Train.Len())
	assert.Equal(t, 2, split.Test.Len())
	assert.Equal(t, map[Polarity]int{Positive: 1, Negative: 1}, split.Test.LabelCounts())
	assert.Equal(t, map[Polarity]int{Positive: 5, Negative: 3}, split.Train.LabelCounts())
}

func TestSplitDatasetFallsBackWithoutStratification(t *testing.T) {
	d := datasetWithLabels(
		Positive, Positive, Positive, Positive, Positive,
		Negative, Negative, Negative, Negative, Neutral,
	)
	split, err := SplitDataset(d, 0.2, 42)
	require.NoError(t, err)

	assert.False(t, split.Stratified)
	assert.Equal(t, 8, split.Train.Len())
	assert.Equal(t, 2, split.Test.Len())
}

func TestSplitDatasetDeterministic(t *testing.T) {
	d := datasetWithLabels(
		Positive, Negative, Positive, Negative, Neutral,
		Neutral, Positive, Negative, Neutral, Positive,
	)
	a, err := SplitDataset(d, 0.3, 7)
	require.NoError(t, err)
	b, err := SplitDataset(d, 0.3, 7)
	require.NoError(t, err)
	assert.Equal(t, a.Test.Texts(), b.Test.Texts())
	assert.Equal(t, a.Train.Texts(), b.Train.Texts())
}

func TestSplitDatasetKeepsEveryRow(t *testing.T) {
	d := datasetWithLabels(Positive, Negative, Positive, Negative, Positive, Negative, Neutral)
	split, err := SplitDataset(d, 0.25, 42)
	require.NoError(t, err)

	all := append(split.Train.Texts(), split.Test.Texts()...)
	assert.ElementsMatch(t, d.Texts(), all)
}

func TestSplitDatasetErrors(t *testing.T) {
	_, err := SplitDataset(datasetWithLabels(Positive), 0.2, 42)
	assert.ErrorIs(t, err, ErrNotEnoughRows)

	_, err = SplitDataset(datasetWithLabels(Positive, Negative), 1.5, 42)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestEncoderCoversTrainingClasses(t *testing.T) {
	d := datasetWithLabels(
		Positive, Positive, Negative, Negative, Neutral,
		Positive, Negative, Neutral, Positive, Negative,
	)
	enc := FitLabelEncoder(d.Labels())
	for seed := int64(0); seed < 20; seed++ {
		split, err := SplitDataset(d, 0.2, seed)
		require.NoError(t, err)
		_, err = enc.Transform(split.Train.Labels())
		require.NoError(t, err)
		_, err = enc.Transform(split.Test.Labels())
		require.NoError(t, err)
	}
}

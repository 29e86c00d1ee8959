package answer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewpilot/reviews-engine/internal/observability"
)

func TestClassifier_Classify(t *testing.T) {
	tests := []struct {
		reply string
		label Label
	}{
		{"quantitative", LabelQuantitative},
		{"qualitative", LabelQualitative},
		{"compound", LabelCompound},
		{" Qualitative.", LabelQualitative},
		{"QUANTITATIVE!", LabelQuantitative},
		{"compound, because it asks two things", LabelCompound},
		{"quantitative\n", LabelQuantitative},
	}

	for _, tc := range tests {
		t.Run(tc.reply, func(t *testing.T) {
			oracle := &stubOracle{completions: []string{tc.reply}}
			c := NewClassifier(observability.Nop(), oracle)

			label, err := c.Classify(context.Background(), "How many reviews are there?")
			require.NoError(t, err)
			assert.Equal(t, tc.label, label)
		})
	}
}

func TestClassifier_UnrecognizedReply(t *testing.T) {
	oracle := &stubOracle{completions: []string{"banana"}}
	c := NewClassifier(observability.Nop(), oracle)

	_, err := c.Classify(context.Background(), "anything")
	require.Error(t, err)

	var classErr *ClassificationError
	require.True(t, errors.As(err, &classErr))
	assert.Equal(t, "banana", classErr.Reply)
}

func TestClassifier_OracleError(t *testing.T) {
	oracle := &stubOracle{completeErr: errors.New("connection refused")}
	c := NewClassifier(observability.Nop(), oracle)

	_, err := c.Classify(context.Background(), "anything")
	require.Error(t, err)

	var classErr *ClassificationError
	assert.False(t, errors.As(err, &classErr))
}

func TestClassifier_SendsQuestionVerbatim(t *testing.T) {
	oracle := &stubOracle{completions: []string{"qualitative"}}
	c := NewClassifier(observability.Nop(), oracle)

	question := "What do people think of the app?"
	_, err := c.Classify(context.Background(), question)
	require.NoError(t, err)

	require.Len(t, oracle.completeCalls, 1)
	assert.Equal(t, question, oracle.completeCalls[0].user)
	assert.Contains(t, oracle.completeCalls[0].system, "single word")
}

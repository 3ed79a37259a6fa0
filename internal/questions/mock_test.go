package questions

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockSource(t *testing.T) {
	for _, level := range []int{1, 5, 10} {
		q, err := MockSource{}.Generate(context.Background(), Input{Subject: "Organic Chemistry", Difficulty: level})
		require.NoError(t, err)

		assert.Equal(t, "d", q.CorrectOption)
		assert.Contains(t, q.Text, "Organic Chemistry")
		assert.Contains(t, q.Text, fmt.Sprintf("difficulty level %d.", level))
		assert.Equal(t, level, q.Difficulty)
		assert.Equal(t, q.Options.D, q.Answer)
		assert.Nil(t, (&StructuralValidator{}).Validate(q, Input{}))
	}
}

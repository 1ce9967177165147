package ingest

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertBatchPreservesOrder(t *testing.T) {
	in := make([]int, 500)
	for i := range in {
		in[i] = i
	}

	out, err := ConvertBatch(in, func(v int) (string, error) {
		return strconv.Itoa(v * 2), nil
	})
	require.NoError(t, err)
	require.Len(t, out, len(in))
	for i, s := range out {
		assert.Equal(t, strconv.Itoa(i*2), s)
	}
}

func TestConvertBatchAllOrNothing(t *testing.T) {
	errBad := errors.New("missing timestamp")
	in := []int{0, 1, 2, 3, 4, 5, 6, 7}

	out, err := ConvertBatch(in, func(v int) (int, error) {
		if v == 3 {
			return 0, errBad
		}
		return v, nil
	})
	assert.Nil(t, out, "partial results are discarded")
	require.ErrorIs(t, err, errBad)
	assert.Contains(t, err.Error(), "element 3")
}

func TestConvertBatchEmpty(t *testing.T) {
	called := false
	out, err := ConvertBatch([]int{}, func(int) (int, error) {
		called = true
		return 0, nil
	})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.False(t, called)
}

func ExampleConvertBatch() {
	out, err := ConvertBatch([]float64{1.5, 2.5}, func(v float64) (float64, error) {
		return v * 2, nil
	})
	fmt.Println(out, err)
	// Output: [3 5] <nil>
}

package memberset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_AddRemove(t *testing.T) {
	s := New()

	assert.True(t, s.Add("a"))
	assert.False(t, s.Add("a"), "second add must be a no-op")
	assert.True(t, s.Add("b"))
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("c"))

	assert.True(t, s.Remove("a"))
	assert.False(t, s.Remove("a"), "second remove must be a no-op")
	assert.Equal(t, 1, s.Len())
	assert.False(t, s.Contains("a"))
	assert.True(t, s.Contains("b"))
}

func TestSet_SwapDelete(t *testing.T) {
	s := New("a", "b", "c", "d")

	// Removing from the middle moves the last element into the hole.
	require.True(t, s.Remove("b"))
	assert.Equal(t, []string{"a", "d", "c"}, s.Values())

	// Every remaining member stays reachable through Contains.
	for _, m := range s.Values() {
		assert.True(t, s.Contains(m))
	}
}

func TestSet_Range(t *testing.T) {
	s := New("a", "b", "c", "d", "e")

	tests := []struct {
		name    string
		from    int
		to      int
		want    []string
		wantErr bool
	}{
		{name: "full range", from: 0, to: 4, want: []string{"a", "b", "c", "d", "e"}},
		{name: "inner range", from: 1, to: 3, want: []string{"b", "c", "d"}},
		{name: "single element", from: 2, to: 2, want: []string{"c"}},
		{name: "from greater than to", from: 3, to: 1, wantErr: true},
		{name: "from past end", from: 5, to: 6, wantErr: true},
		{name: "to past end", from: 0, to: 5, wantErr: true},
		{name: "negative from", from: -1, to: 2, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Range(tt.from, tt.to)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrOutOfRange)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, tt.to-tt.from+1)
		})
	}
}

func TestSet_RangeEmpty(t *testing.T) {
	s := New()
	_, err := s.Range(0, 0)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestSet_RangeStableBetweenReads(t *testing.T) {
	s := New("a", "b", "c", "d")

	first, err := s.Range(0, 3)
	require.NoError(t, err)
	second, err := s.Range(0, 3)
	require.NoError(t, err)
	assert.Equal(t, first, second, "order must not change without a mutation")
}

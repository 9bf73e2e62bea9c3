package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func band(id, participants, albums int64, name string) Band {
	return Band{ID: id, Name: name, NumberOfParticipants: participants, AlbumsCount: albums}
}

func TestCompare_Order(t *testing.T) {
	tests := []struct {
		name string
		a, b Band
		want int
	}{
		{"participants first", band(1, 2, 9, "z"), band(2, 3, 1, "a"), -1},
		{"then albums", band(1, 3, 1, "z"), band(2, 3, 2, "a"), -1},
		{"then name", band(1, 3, 2, "a"), band(2, 3, 2, "b"), -1},
		{"then id", band(1, 3, 2, "a"), band(2, 3, 2, "a"), -1},
		{"equal", band(1, 3, 2, "a"), band(1, 3, 2, "a"), 0},
		{"greater", band(5, 4, 2, "a"), band(1, 3, 2, "a"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
			assert.Equal(t, -tt.want, Compare(tt.b, tt.a))
		})
	}
}

func TestCompareFields_IgnoresID(t *testing.T) {
	assert.Equal(t, 0, CompareFields(band(1, 3, 2, "a"), band(9, 3, 2, "a")))
}

func TestSortAscending(t *testing.T) {
	bands := []Band{
		band(3, 5, 1, "c"),
		band(1, 1, 1, "a"),
		band(4, 5, 1, "b"),
		band(2, 1, 1, "a"),
	}
	SortAscending(bands)

	var ids []int64
	for _, b := range bands {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []int64{1, 2, 4, 3}, ids)
	assert.True(t, Less(bands[0], bands[1]))
}

func TestMax(t *testing.T) {
	_, ok := Max(nil)
	assert.False(t, ok)

	top, ok := Max([]Band{band(1, 1, 1, "a"), band(2, 9, 1, "b"), band(3, 2, 1, "c")})
	assert.True(t, ok)
	assert.Equal(t, int64(2), top.ID)
}

package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tileMeta struct {
	ID      string   `json:"id"`
	Records uint64   `json:"records"`
	Height  *float64 `json:"height"`
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())
	}

	c, ok := ByName("")
	require.True(t, ok)
	assert.Equal(t, Default, c)

	_, ok = ByName("msgpack")
	assert.False(t, ok)
}

func TestCodecs_Interchangeable(t *testing.T) {
	h := 12.5
	in := tileMeta{ID: "r3c4-12", Records: 7, Height: &h}

	for _, c := range []Codec{JSON{}, GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			data, err := c.Marshal(in)
			require.NoError(t, err)
			assert.JSONEq(t, `{"id":"r3c4-12","records":7,"height":12.5}`, string(data))

			for _, other := range []Codec{JSON{}, GoJSON{}} {
				var out tileMeta
				require.NoError(t, other.Unmarshal(data, &out))
				assert.Equal(t, in, out)
			}
		})
	}
}

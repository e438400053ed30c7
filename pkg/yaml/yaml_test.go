package yaml

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOverride(t *testing.T) {
	b, err := Override("decode.width=320")
	require.Nil(t, err)
	require.Equal(t, "decode:\n  width: 320\n", string(b))

	b, err = Override("decode.chunk_sizes=[1, 7, 4096]")
	require.Nil(t, err)

	var cfg struct {
		Decode struct {
			ChunkSizes []int `yaml:"chunk_sizes"`
		} `yaml:"decode"`
	}
	require.Nil(t, Unmarshal(b, &cfg))
	require.Equal(t, []int{1, 7, 4096}, cfg.Decode.ChunkSizes)

	_, err = Override("decode.width")
	require.NotNil(t, err)

	_, err = Override("decode..width=1")
	require.NotNil(t, err)
}

package rag

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkSizePolicy(t *testing.T) {
	chunks := slices.Collect(Chunk("short\nshort2\nthis-line-is-longer-than-ten", 10))
	require.Equal(t, []string{"short", "short2", "this-line-is-longer-than-ten"}, chunks)

	chunks = slices.Collect(Chunk("ab\ncd\nef", 5))
	require.Equal(t, []string{"ab cd", "ef"}, chunks)
}

func TestChunkDropsBlankLines(t *testing.T) {
	require.Empty(t, slices.Collect(Chunk("", 10)))
	require.Empty(t, slices.Collect(Chunk("  \n\t\n\r\n", 10)))

	chunks := slices.Collect(Chunk("  alpha  \n\n\r\n beta\r\ngamma\rdelta", 100))
	require.Equal(t, []string{"alpha beta gamma delta"}, chunks)
}

func TestChunkCountsCharacters(t *testing.T) {
	// 5 characters, 10 bytes each
	chunks := slices.Collect(Chunk("éééèè\nààààà", 10))
	require.Equal(t, []string{"éééèè ààààà"}, chunks)
}

func TestChunkKeepsLineBoundaries(t *testing.T) {
	var lines []string
	for i := 0; i < 50; i++ {
		lines = append(lines, strings.Repeat("x", i%13+1)+"-line")
	}
	var got []string
	for chunk := range Chunk(strings.Join(lines, "\n\n"), 40) {
		require.NotEmpty(t, chunk)
		got = append(got, strings.Split(chunk, " ")...)
	}
	require.Equal(t, lines, got)
}

func TestChunkRestartable(t *testing.T) {
	seq := Chunk("one\ntwo\nthree\nfour", 7)
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	require.Equal(t, first, second)
	require.Equal(t, []string{"one two", "three", "four"}, first)

	for chunk := range seq {
		require.Equal(t, "one two", chunk)
		break
	}
}

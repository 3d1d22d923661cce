package tictactoe

import (
	"testing"

	"gamesearch/game"

	"github.com/stretchr/testify/require"
)

func TestBoard(t *testing.T) {
	t.Run("new board offers every cell to X", func(t *testing.T) {
		b := NewBoard()

		moves := b.LegalMoves()

		require.Len(t, moves, 9)
		require.Equal(t, X, b.Player())
		require.Equal(t, X, moves[0].Player())
		require.False(t, moves[0].IsStochastic())
	})

	t.Run("playing alternates players", func(t *testing.T) {
		b := NewBoard()

		next := b.Play(b.LegalMoves()[4])

		require.Equal(t, O, next.Player())
		require.Len(t, next.LegalMoves(), 8)
		require.Equal(t, "...\n.X.\n...\n", next.(*Board).String())
		require.Len(t, b.LegalMoves(), 9, "Boards should be immutable")
	})

	t.Run("three in a row wins", func(t *testing.T) {
		b, err := Parse("XXXOO....", O)
		require.NoError(t, err)

		require.Equal(t, []string{X}, b.Winners())
		require.Equal(t, game.NoPlayer, b.Player())
		require.Empty(t, b.LegalMoves())
	})

	t.Run("full board without a line is a draw", func(t *testing.T) {
		b, err := Parse("XOXXOOOXX", O)
		require.NoError(t, err)

		require.Empty(t, b.Winners())
		require.Equal(t, game.NoPlayer, b.Player())
		require.True(t, game.IsTerminal(b))
	})

	t.Run("transpositions are equal", func(t *testing.T) {
		b := NewBoard()
		viaCorner := b.Play(Move{Cell: 0, Mark: X, origin: b})
		viaCorner = viaCorner.Play(Move{Cell: 4, Mark: O, origin: viaCorner.(*Board)})
		viaCorner = viaCorner.Play(Move{Cell: 8, Mark: X, origin: viaCorner.(*Board)})
		viaOpposite := b.Play(Move{Cell: 8, Mark: X, origin: b})
		viaOpposite = viaOpposite.Play(Move{Cell: 4, Mark: O, origin: viaOpposite.(*Board)})
		viaOpposite = viaOpposite.Play(Move{Cell: 0, Mark: X, origin: viaOpposite.(*Board)})

		require.NotSame(t, viaCorner, viaOpposite)
		require.True(t, viaCorner.Equal(viaOpposite))
		require.Equal(t, viaCorner.Hash(), viaOpposite.Hash())
	})

	t.Run("player to move is part of the position", func(t *testing.T) {
		x, _ := Parse("X........", X)
		o, _ := Parse("X........", O)

		require.False(t, x.Equal(o))
		require.NotEqual(t, x.Hash(), o.Hash())
	})

	t.Run("taken cells panic", func(t *testing.T) {
		b, _ := Parse("X........", O)

		require.Panics(t, func() { b.Play(Move{Cell: 0, Mark: O, origin: b}) })
	})
}

func TestParse(t *testing.T) {
	_, err := Parse("XX", X)
	require.Error(t, err)
	_, err = Parse("XX.......", "Z")
	require.Error(t, err)
	_, err = Parse("XX.....?.", X)
	require.Error(t, err)
}

package engine

import (
	"context"
	"strings"
	"time"

	"gamesearch/experiments/metrics"
	"gamesearch/game"
	"gamesearch/searcher/agent"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Option func(e *LocalEngine)

func WithMaxMoves(moves int) Option {
	return func(e *LocalEngine) {
		if moves > 0 {
			e.maxMoves = moves
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(e *LocalEngine) {
		e.logger = logger
	}
}

// LocalEngine plays a game between in-process agents, one per player.
type LocalEngine struct {
	State    game.State
	Agents   map[string]agent.Agent
	maxMoves int
	logger   zerolog.Logger
}

func NewLocalEngine(state game.State, agents map[string]agent.Agent, options ...Option) *LocalEngine {
	for _, player := range state.Players() {
		if _, ok := agents[player]; !ok {
			panic("no agent for player " + player)
		}
	}
	if len(agents) < 2 {
		panic("need at least two agents")
	}

	e := &LocalEngine{
		State:    state,
		Agents:   agents,
		maxMoves: MaxMoves,
		logger:   log.Logger,
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Run executes the entire game loop until the game is over. Cancelling ctx
// stops the game between moves.
func (e *LocalEngine) Run(ctx context.Context) ([]string, metrics.GameMetric, []metrics.MoveMetric) {
	gameMetric := metrics.GameMetric{
		StartingPlayer: e.State.Player(),
		StartTime:      time.Now(),
	}
	moveMetrics := []metrics.MoveMetric{}

	e.logger.Info().Msgf("player %s is starting", e.State.Player())

	step := 1
	for !game.IsTerminal(e.State) && step <= e.maxMoves && ctx.Err() == nil {
		player := e.State.Player()
		move, searchMetric := e.Agents[player].FindMove(ctx, e.State)
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Player:       player,
			SearchMetric: searchMetric,
		})

		if err := game.Verify(e.State, move); err != nil {
			e.logger.Warn().Err(err).Str("player", player).Msg("agent returned an invalid move, playing the first legal move")
			move = e.State.LegalMoves()[0]
		}

		e.State = e.State.Play(move)
		step++
	}

	winners := e.State.Winners()
	if len(winners) == 0 && !game.IsTerminal(e.State) {
		e.logger.Warn().Msgf("stopped after %d moves without a result", step-1)
	}

	gameMetric.Winner = strings.Join(winners, "+")
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = step - 1
	return winners, gameMetric, moveMetrics
}

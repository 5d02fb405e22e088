package votingengine

import (
	"log/slog"

	httpadapter "elect/contexts/election-operations/voting-engine/adapters/http"
	"elect/contexts/election-operations/voting-engine/adapters/memory"
	"elect/contexts/election-operations/voting-engine/application/commands"
	"elect/contexts/election-operations/voting-engine/application/queries"
	"elect/contexts/election-operations/voting-engine/application/workers"
	"elect/contexts/election-operations/voting-engine/domain/entities"
	"elect/contexts/election-operations/voting-engine/ports"
)

type Module struct {
	Handler   httpadapter.Handler
	Scheduler workers.StatusScheduler
	Store     *memory.Store
}

type Dependencies struct {
	Elections      ports.ElectionRepository
	Voters         ports.VoterRepository
	Participations ports.ParticipationRepository
	Ballots        ports.BallotRepository
	Outbox         ports.OutboxWriter
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	voteUseCase := commands.VoteUseCase{
		Elections:      deps.Elections,
		Voters:         deps.Voters,
		Participations: deps.Participations,
		Ballots:        deps.Ballots,
		Outbox:         deps.Outbox,
		Clock:          deps.Clock,
		IDGen:          deps.IDGen,
		Logger:         deps.Logger,
	}
	finalizeUseCase := commands.FinalizeUseCase{
		Elections:      deps.Elections,
		Participations: deps.Participations,
		Outbox:         deps.Outbox,
		Clock:          deps.Clock,
		IDGen:          deps.IDGen,
		Logger:         deps.Logger,
	}
	resultsUseCase := queries.ResultsUseCase{
		Elections:      deps.Elections,
		Participations: deps.Participations,
		Voters:         deps.Voters,
	}
	scheduler := workers.StatusScheduler{
		Elections: deps.Elections,
		Outbox:    deps.Outbox,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Votes:     voteUseCase,
			Finalizer: finalizeUseCase,
			Results:   resultsUseCase,
			Scheduler: scheduler,
			Logger:    deps.Logger,
		},
		Scheduler: scheduler,
	}
}

func NewInMemoryModule(seed []entities.Election, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Elections:      store,
		Voters:         store,
		Participations: store,
		Ballots:        store,
		Outbox:         store,
		Clock:          store,
		IDGen:          store,
		Logger:         logger,
	})
	module.Store = store
	return module
}

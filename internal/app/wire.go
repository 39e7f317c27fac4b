//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/eslsoft/kyoshi/internal/adapter/httpapi"
	adapterrepo "github.com/eslsoft/kyoshi/internal/adapter/repository"
	"github.com/eslsoft/kyoshi/internal/infrastructure/config"
	"github.com/eslsoft/kyoshi/internal/infrastructure/database"
	"github.com/eslsoft/kyoshi/internal/infrastructure/server"
	"github.com/eslsoft/kyoshi/internal/usecase"
)

var configSet = wire.NewSet(
	config.Load,
)

var databaseSet = wire.NewSet(
	database.NewConnection,
)

var repositorySet = wire.NewSet(
	provideCatalog,
	provideSessions,
	adapterrepo.NewMasteryRepository,
	adapterrepo.NewWordProgressRepository,
	adapterrepo.NewLearnerRepository,
)

var usecaseSet = wire.NewSet(
	usecase.NewMasteryUsecase,
	usecase.NewPhaseUsecase,
	usecase.NewRand,
	usecase.NewExerciseUsecase,
	usecase.NewSchedulerUsecase,
	usecase.NewTutorUsecase,
	provideChecklists,
	provideGenerator,
	provideStrategy,
)

var serviceSet = wire.NewSet(
	httpapi.NewRouter,
)

var serverSet = wire.NewSet(
	server.NewLogger,
	server.NewServer,
)

// Initialize builds the application container using Wire.
func Initialize() (*Container, func(), error) {
	wire.Build(
		configSet,
		databaseSet,
		repositorySet,
		usecaseSet,
		serviceSet,
		serverSet,
		wire.Struct(new(Container), "Logger", "DB", "Server"),
	)
	return nil, nil, nil
}

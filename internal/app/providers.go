package app

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/kyoshi/internal/adapter/catalog"
	"github.com/eslsoft/kyoshi/internal/adapter/llm"
	adapterrepo "github.com/eslsoft/kyoshi/internal/adapter/repository"
	"github.com/eslsoft/kyoshi/internal/infrastructure/config"
	"github.com/eslsoft/kyoshi/internal/repository"
	"github.com/eslsoft/kyoshi/internal/usecase"
)

func provideCatalog(cfg *config.Config) (repository.Catalog, error) {
	return catalog.NewFileCatalog(cfg.Catalog.Dir)
}

// provideSessions selects the session store. An empty redis address keeps
// lesson state in process memory, which is enough for a single instance.
func provideSessions(cfg *config.Config) repository.SessionRepository {
	if cfg.Redis.Addr == "" {
		return adapterrepo.NewMemorySessionRepository()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return adapterrepo.NewRedisSessionRepository(client, cfg.Redis.SessionTTL)
}

func provideChecklists(cfg *config.Config, cat repository.Catalog, mastery usecase.MasteryUsecase) usecase.ChecklistUsecase {
	return usecase.NewChecklistUsecase(cat, mastery, cfg.Tutor.MaxReviewItems)
}

func provideGenerator(cfg *config.Config, logger *logrus.Logger) (usecase.ContentGenerator, error) {
	return llm.NewContentGenerator(cfg, logger)
}

func provideStrategy(
	cfg *config.Config,
	sessions repository.SessionRepository,
	learners repository.LearnerRepository,
	checklists usecase.ChecklistUsecase,
	generator usecase.ContentGenerator,
	phases usecase.PhaseUsecase,
	exercises usecase.ExerciseUsecase,
) (usecase.ProgressionStrategy, error) {
	return usecase.NewProgressionStrategy(cfg.Tutor.Strategy, sessions, learners, checklists, generator, phases, exercises)
}

package app

import (
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/kyoshi/internal/infrastructure/database"
	"github.com/eslsoft/kyoshi/internal/infrastructure/server"
)

// Container aggregates the application dependencies produced by Wire.
type Container struct {
	Logger *logrus.Logger
	DB     *database.DB
	Server *server.Server
}

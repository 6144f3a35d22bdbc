package server

import (
	"github.com/raysh454/reconspider/internal/app"
	"github.com/raysh454/reconspider/internal/interfaces"
)

type Config struct {
	// HTTP listen address, e.g. ":8080"
	ListenAddr string

	// Application-level config
	AppConfig *app.Config

	// Logger to use. If nil, server will construct a default StdoutLogger.
	Logger interfaces.Logger
}

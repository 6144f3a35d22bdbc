package server

//go:generate swag init -g internal/server/server.go -o docs/swagger

// @title reconspider API
// @version 0.1
// @description Interactive documentation for the reconspider crawl-job API surface.
// @contact.name reconspider maintainers
// @contact.url https://github.com/raysh454/reconspider
// @BasePath /

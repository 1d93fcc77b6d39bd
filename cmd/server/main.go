package main

import (
	"github.com/atento/knowledge/internal/server"
	"github.com/atento/knowledge/internal/util"
	"github.com/atento/knowledge/pkg/logger"
	"github.com/atento/knowledge/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	logger.Init(console.New(console.Params{
		Debug: util.GetEnvBool("DEBUG", false),
	}))

	server.Init()
}

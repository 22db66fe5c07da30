// @title LearnHub 后端 API
// @version 1.0
// @description LearnHub 在线学习平台的后端服务器。

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"learnhub_backend/internal/cli"
	"os"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

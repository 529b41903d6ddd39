package main

import (
	"reservation-api/core/logger"
	"reservation-api/core/server"
)

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", "error", err)
	}
}

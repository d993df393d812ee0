package main

import (
	"log"

	"github.com/joho/godotenv"
)

func main() {
	// a missing .env is fine; config.yml and the environment still apply
	_ = godotenv.Load()

	if err := Root().Execute(); err != nil {
		log.Fatalf("videocontainer: %v", err)
	}
}

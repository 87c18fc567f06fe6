package main

import (
	"log"

	"fintrek-backend/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatalf("fintrek: %v", err)
	}
}

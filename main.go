package main

import (
	"log"

	"rosterd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatalf("rosterd: %v", err)
	}
}

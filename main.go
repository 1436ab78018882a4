package main

import (
	"log"

	"github.com/Boniole/test-task-candidates-scraper/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

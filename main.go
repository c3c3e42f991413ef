package main

import (
	"log"

	"github.com/trawers/trawers-api/app"
)

func main() {
	if err := app.SetupAndRunServer(); err != nil {
		log.Fatal(err)
	}
}

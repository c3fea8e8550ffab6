// main.go
package main

import (
	"log"

	"event-portal-client/cmd"
)

func main() {
	if err := cmd.Start(); err != nil {
		log.Fatal(err)
	}
}

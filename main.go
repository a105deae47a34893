package main

import (
	cmd "github.com/mentormatch/mentormatch/cmd/mentormatch"
	"github.com/mentormatch/mentormatch/internal"
)

var log = internal.GetLogger()

func main() {
	log.Info("Starting mentormatch")
	cmd.Execute()
}

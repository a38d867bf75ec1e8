package main

import (
	"github.com/workpulse/workpulse/cmd"
)

func main() {
	cmd.Execute()
}

package main

import (
	"github.com/iCardioAI/encephalon-examples/cmd"
)

func main() {
	cmd.Execute()
}

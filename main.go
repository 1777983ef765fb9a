package main

import (
	"github.com/nyuappdev/dining-audit/cmd"
)

func main() {
	cmd.Execute()
}

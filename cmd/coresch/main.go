package main

import "github.com/OpenTraceLab/coresch/cmd/coresch/cmd"

func main() {
	cmd.Execute()
}

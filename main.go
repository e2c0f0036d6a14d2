package main

import "github.com/growlab/growlab-cli/cmd"

func main() {
	cmd.Execute()
}

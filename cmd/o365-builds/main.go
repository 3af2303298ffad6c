package main

import "github.com/pfrederiksen/o365-builds/internal/cli"

func main() {
	cli.Execute()
}

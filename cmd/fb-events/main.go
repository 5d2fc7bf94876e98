package main

import "github.com/pfrederiksen/fb-events/internal/cli"

func main() {
	cli.Execute()
}

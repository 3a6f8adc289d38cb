package main

import "option-tagger/internal/cli"

func main() {
	cli.Execute()
}

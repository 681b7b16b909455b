package main

import "github.com/quillhaven/safeguard/internal/cli"

func main() {
	cli.Execute()
}

package main

import "lovable-tutor/internal/cli"

func main() {
	cli.Execute()
}

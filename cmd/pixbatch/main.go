package main

import "pixbatch/internal/cli"

func main() {
	cli.Execute()
}

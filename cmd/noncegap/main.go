package main

import "github.com/vietddude/noncegap/internal/cli"

func main() {
	cli.Execute()
}

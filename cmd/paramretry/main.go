package main

import "github.com/vietddude/paramretry/internal/cli"

func main() {
	cli.Execute()
}

package main

import "github.com/mohammed-shakir/fdsnws-client/internal/cli"

func main() {
	cli.Execute()
}

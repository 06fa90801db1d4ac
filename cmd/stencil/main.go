package main

import "github.com/stencilproject/stencil/cmd/stencil/cmd"

func main() {
	cmd.Execute()
}

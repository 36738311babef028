package main

import "github.com/qobs-build/cbuild/cmd"

func main() {
	cmd.Execute()
}

package main

import "pft/cmd/pft/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/Tiliavir/labb/cmd"

func main() {
	cmd.Execute()
}

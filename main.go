package main

import "github.com/papapumpkin/sarf/cmd"

func main() {
	cmd.Execute()
}

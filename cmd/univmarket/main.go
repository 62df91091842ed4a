package main

import "github.com/pritampani/UnivMarket/cmd/univmarket/cmd"

func main() {
	cmd.Execute()
}

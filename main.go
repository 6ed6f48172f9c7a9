package main

import "github.com/theirongolddev/moneyplan/cmd"

func main() {
	cmd.Execute()
}

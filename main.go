package main

import "github.com/lepinkainen/bookbot/cmd"

var execute = cmd.Execute

func main() {
	execute()
}

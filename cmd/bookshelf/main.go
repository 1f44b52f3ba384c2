package main

import "bookshelf/cmd/bookshelf/commands"

func main() {
	commands.Execute()
}

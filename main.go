package main

import "github.com/naka-gawa/pr-sheet-sync/cmd"

func main() {
	cmd.Execute()
}

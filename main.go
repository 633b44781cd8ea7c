package main

import "github.com/sadopc/playtime/cmd"

func main() {
	cmd.Execute()
}

package main

import "mod-loader/cmd"

func main() {
	cmd.Execute()
}

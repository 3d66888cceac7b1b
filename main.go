package main

import "attendlog/cmd"

func main() {
	cmd.Execute()
}

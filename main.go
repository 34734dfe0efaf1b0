package main

import "github.com/sitpractice/sit-api/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/tmarback/BlakeBot-sub002/cmd"

func main() {
	cmd.Execute()
}

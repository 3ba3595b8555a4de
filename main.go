package main

import "github.com/csdex/csdex/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/isobytes/cnreduce/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/aleph-zero/linkstack/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/chxlky/wekan-sync/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/teamNotification/cmd/teamfn/cmd"

func main() {
	cmd.Execute()
}

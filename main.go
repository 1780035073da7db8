package main

import "github.com/liftlog/liftlog-mcp/internal/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/PoetryWindy/github-stats-bot/cmd"

func main() {
	cmd.Execute()
}

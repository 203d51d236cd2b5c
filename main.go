package main

import "interview-voice-service/internal/cli"

func main() {
	cli.Execute()
}

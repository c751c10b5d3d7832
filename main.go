package main

import (
	"fmt"
	"os"

	"confessions/bot"
)

func main() {
	if err := bot.Start(); err != nil {
		fmt.Fprintln(os.Stderr, "confessions:", err)
		os.Exit(1)
	}
}

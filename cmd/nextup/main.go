// Command nextup drives a presentation session from the terminal: log in,
// draw teams, run the presentation and Q&A countdown and record the times.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/daap14/nextup/internal/client"
	"github.com/daap14/nextup/internal/config"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	tokenPath, err := defaultTokenPath()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	token := os.Getenv("NEXTUP_TOKEN")
	if token == "" {
		token, _ = readToken(tokenPath)
	}

	baseURL := os.Getenv("NEXTUP_URL")
	if baseURL == "" {
		baseURL = "http://localhost:5001"
	}

	cli := &commandLine{
		api:       client.New(baseURL, token),
		in:        os.Stdin,
		out:       os.Stdout,
		tokenPath: tokenPath,
	}
	if err := cli.run(os.Args); err != nil {
		if !errors.Is(err, errHelp) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

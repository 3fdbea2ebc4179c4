// Command twinchat is a terminal chat client for the digital twin. A
// question given as arguments (or via the QUESTION env variable) is
// answered once; without one it drops into an interactive loop.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/kailas-cloud/twinrag/internal/bootstrap"
	"github.com/kailas-cloud/twinrag/internal/config"
	"github.com/kailas-cloud/twinrag/internal/domain"
	logpkg "github.com/kailas-cloud/twinrag/internal/logger"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Chat output goes to stdout; keep the structured log out of the way.
	logger, err := logpkg.NewLogger(env, "error")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	fmt.Println("Digital Twin - AI Profile Assistant")
	fmt.Println(strings.Repeat("=", 40))

	// One-shot mode: arguments or QUESTION env variable.
	question := strings.TrimSpace(strings.Join(os.Args[1:], " "))
	if question == "" {
		question = strings.TrimSpace(os.Getenv("QUESTION"))
	}
	if question != "" {
		fmt.Println(ask(ctx, app, question))
		return
	}

	fmt.Println("Ask questions about experience, skills, projects, or career goals.")
	fmt.Println("Type 'exit' to quit.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		q := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(q, "exit") || strings.EqualFold(q, "quit") {
			fmt.Println("Thanks for chatting with your Digital Twin!")
			break
		}
		if q == "" {
			continue
		}
		fmt.Printf("Twin: %s\n\n", ask(ctx, app, q))
	}
}

func ask(ctx context.Context, app *bootstrap.Container, question string) string {
	result, err := app.Pipeline.Ask(ctx, domain.AskRequest{
		Question:       question,
		EnhanceQuery:   true,
		FormatResponse: true,
	})
	if err != nil {
		return fmt.Sprintf("Error during query: %v", err)
	}
	if result.Matches > 0 {
		fmt.Printf("(found %d relevant results)\n", result.Matches)
	}
	return result.Answer
}

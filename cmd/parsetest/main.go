package main

// Parse a saved completion offline:
//   go run ./cmd/parsetest -in completion.md
// Render the prompt an answer set would produce:
//   go run ./cmd/parsetest -answers answers.json

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"assessment-backend/internal/assessment"
	"assessment-backend/internal/bootstrap"
	"assessment-backend/internal/catalog"
	"assessment-backend/internal/llm"
	"assessment-backend/internal/recommendations"
	"assessment-backend/internal/shared/config"
)

func main() {
	cfg := config.Load()

	inPath := flag.String("in", "", "Path to a saved completion ('-' for stdin)")
	answersPath := flag.String("answers", "", "Path to an answer set JSON file; prints the prompt instead of parsing")
	format := flag.String("format", "both", "Output: json, text or both")
	flag.Parse()

	if strings.TrimSpace(*answersPath) != "" {
		prompt, err := renderPrompt(cfg, *answersPath)
		if err != nil {
			exitErr(err.Error())
		}
		fmt.Print(prompt)
		return
	}

	if strings.TrimSpace(*inPath) == "" {
		exitErr("-in or -answers is required")
	}
	raw, err := readInput(*inPath)
	if err != nil {
		exitErr(fmt.Sprintf("read completion: %v", err))
	}

	doc := recommendations.Parse(raw)
	switch *format {
	case "json":
		printJSON(doc)
	case "text":
		fmt.Print(recommendations.Format(doc))
	default:
		printJSON(doc)
		fmt.Println()
		fmt.Print(recommendations.Format(doc))
	}
	fmt.Fprintf(os.Stderr, "items=%d fallback=%t\n", doc.ItemCount(), recommendations.IsFallback(doc))
}

func renderPrompt(cfg config.Config, answersPath string) (string, error) {
	body, err := os.ReadFile(answersPath)
	if err != nil {
		return "", fmt.Errorf("read answers: %w", err)
	}
	_, answers, err := assessment.ValidateAnswers(body)
	if err != nil {
		return "", err
	}
	ctx := context.Background()
	store, err := bootstrap.BuildStore(ctx, cfg)
	if err != nil {
		return "", err
	}
	cat, err := catalog.NewStoreSource(store, cfg.CatalogKey).Load(ctx)
	if err != nil {
		return "", err
	}
	return llm.BuildAssessmentPrompt(cat, answers), nil
}

func readInput(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

func printJSON(doc recommendations.Document) {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		exitErr(fmt.Sprintf("encode: %v", err))
	}
	fmt.Println(string(out))
}

func exitErr(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}

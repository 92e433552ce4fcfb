package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/legalaid/internal/app"
	"github.com/ternarybob/legalaid/internal/models"
	"github.com/ternarybob/legalaid/internal/services/analysis"
	"github.com/ternarybob/legalaid/internal/services/chat"
	"github.com/ternarybob/legalaid/internal/services/i18n"
	"github.com/ternarybob/legalaid/internal/services/transcript"
)

// terminalSession opens a session for the -name and -lang flags
func terminalSession(application *app.App) (*models.Session, error) {
	if *sessionLang != "" && !application.Catalog.Has(*sessionLang) {
		return nil, fmt.Errorf("unsupported language %q", *sessionLang)
	}
	name := *sessionName
	if name == "" {
		name = os.Getenv("USER")
	}
	return application.Sessions.Create(name, *sessionLang), nil
}

// runAsk answers one query and prints the answer with its source
func runAsk(ctx context.Context, application *app.App, query string) int {
	s, err := terminalSession(application)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	result := application.Resolver.Resolve(ctx, s, query)
	fmt.Println(result.Text)
	fmt.Printf("\n[source: %s]\n", result.Source)
	return 0
}

// runAnalyze extracts and analyzes one document, printing or writing the report
func runAnalyze(ctx context.Context, application *app.App, path, out string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", path, err)
		return 1
	}

	payload := models.DocumentPayload{
		Name: filepath.Base(path),
		Size: int64(len(data)),
		Data: data,
	}

	info := application.Extractor.Describe(payload)
	logger.Info().
		Str("file", info.Name).
		Float64("size_kb", info.SizeKB).
		Str("type", info.Type).
		Msg("Analyzing document")

	extracted, err := application.Extractor.Extract(ctx, payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}

	text, err := application.Analyzer.Analyze(ctx, extracted.Text, payload.Name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	report := analysis.NewReport(models.AnalysisReport{
		DocumentName: payload.Name,
		Analysis:     text,
		GeneratedAt:  time.Now(),
	})

	if out == "" {
		fmt.Print(report.Text())
		return 0
	}

	content := []byte(report.Text())
	if strings.EqualFold(filepath.Ext(out), ".pdf") {
		content, err = report.PDF(application.PDFService)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to render PDF: %v\n", err)
			return 1
		}
	}
	if err := os.WriteFile(out, content, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", out, err)
		return 1
	}
	fmt.Printf("Report written to %s\n", out)
	return 0
}

const replHelp = `Commands:
  :detail          detailed explanation of the last AI answer
  :history         show the interaction history
  :csv <path>      save the interaction history as CSV
  :lang <name>     switch language (:lang lists them)
  :quit            exit`

// runREPL reads queries line by line until EOF, :quit or ctx is done
func runREPL(ctx context.Context, application *app.App, in io.Reader, out io.Writer) int {
	s, err := terminalSession(application)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	catalog := application.Catalog
	fmt.Fprintf(out, "%s, %s\n%s\n\n", catalog.Text(s.Language, i18n.KeyWelcome), s.DisplayName, replHelp)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "%s> ", catalog.Text(s.Language, i18n.KeyAskQuery))
		if !scanner.Scan() || ctx.Err() != nil {
			fmt.Fprintln(out)
			return 0
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case line == ":quit" || line == ":q":
			return 0
		case line == ":history":
			transcript.RenderTable(out, s.Interactions)
		case line == ":detail":
			text, err := application.Resolver.Elaborate(ctx, s)
			if err != nil {
				fmt.Fprintln(out, chat.DetailUnavailableMessage)
				continue
			}
			fmt.Fprintln(out, text)
		case strings.HasPrefix(line, ":csv"):
			path := strings.TrimSpace(strings.TrimPrefix(line, ":csv"))
			if path == "" {
				path = transcript.CSVFileName
			}
			if err := writeCSV(path, s.Interactions); err != nil {
				fmt.Fprintf(out, "failed to save history: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "History saved to %s\n", path)
		case strings.HasPrefix(line, ":lang"):
			name := strings.TrimSpace(strings.TrimPrefix(line, ":lang"))
			if !catalog.Has(name) {
				for _, lang := range catalog.Languages() {
					fmt.Fprintf(out, "  %s\n", lang.Name)
				}
				continue
			}
			s.Language = name
		default:
			result := application.Resolver.Resolve(ctx, s, line)
			fmt.Fprintln(out, result.Text)
			if result.OffersDetail() {
				fmt.Fprintln(out, "(:detail for a detailed explanation)")
			}
		}
	}
}

func writeCSV(path string, interactions []models.Interaction) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := transcript.WriteCSV(f, interactions); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

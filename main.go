package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/wasya-io/kilonote/app/entity/content"
	"github.com/wasya-io/kilonote/app/entity/perf"
)

const usage = `kilonote - note content pipeline

Usage:
  kilonote [global flags] <command> [flags] <file>

Commands:
  classify <file>                  print the detected format of a file
  import <file> [-o out]           convert a file into a stored envelope
  export --format F <file>         convert a file to html, markdown or json
  envelope <file>                  describe a stored envelope
  stream <file>                    append stdin lines to a note with autosave

Global flags:
`

func main() {
	// グローバルなパニックハンドラを設定
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "kilonote crashed: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s", debug.Stack())
			os.Exit(1)
		}
	}()

	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		die(err)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	var flags globalFlags
	flagSet := pflag.NewFlagSet("kilonote", pflag.ContinueOnError)
	flagSet.SetInterspersed(false)
	flagSet.BoolVar(&flags.debug, "debug", false, "write debug logs")
	flagSet.StringVar(&flags.logDir, "log-dir", "", "directory for logs and error reports")
	help := flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stdout, flagSet)
			return nil
		}
		return err
	}
	if *help || flagSet.NArg() == 0 {
		printHelp(stdout, flagSet)
		return nil
	}

	command, rest := flagSet.Arg(0), flagSet.Args()[1:]
	switch command {
	case "classify":
		return runClassify(flags, rest, stdout)
	case "import":
		return runImport(flags, rest, stdout)
	case "export":
		return runExport(flags, rest, stdout)
	case "envelope":
		return runEnvelope(rest, stdout)
	case "stream":
		return runStream(flags, rest, stdin, stdout)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprint(w, usage)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}

// parseCommand はサブコマンドのフラグを解析し、対象ファイルを1つ取り出す
func parseCommand(flagSet *pflag.FlagSet, args []string) (string, error) {
	if err := flagSet.Parse(args); err != nil {
		return "", err
	}
	if flagSet.NArg() != 1 {
		return "", fmt.Errorf("%s: expected exactly one file", flagSet.Name())
	}
	return flagSet.Arg(0), nil
}

func runClassify(flags globalFlags, args []string, stdout io.Writer) error {
	filename, err := parseCommand(pflag.NewFlagSet("classify", pflag.ContinueOnError), args)
	if err != nil {
		return err
	}

	ed, err := NewEditor(flags)
	if err != nil {
		return err
	}
	defer ed.Cleanup()

	raw, err := ed.files.OpenFile(filename)
	if err != nil {
		return err
	}
	// 保存済みのノートはエンベロープの中身を判定する
	if stored, ok := content.Unmarshal([]byte(raw)); ok {
		fmt.Fprintln(stdout, ed.session.Store().Classify(stored.Payload))
		return nil
	}
	fmt.Fprintln(stdout, ed.session.Store().Classify(raw))
	return nil
}

func runImport(flags globalFlags, args []string, stdout io.Writer) error {
	flagSet := pflag.NewFlagSet("import", pflag.ContinueOnError)
	output := flagSet.StringP("output", "o", "", "write the envelope to this file instead of stdout")
	filename, err := parseCommand(flagSet, args)
	if err != nil {
		return err
	}

	ed, err := NewEditor(flags)
	if err != nil {
		return err
	}
	defer ed.Cleanup()

	if err := ed.Open(filename); err != nil {
		return err
	}

	var stored content.StoredContent
	ed.do(func() { stored, err = ed.session.Snapshot() })
	if err != nil {
		return err
	}
	if *output != "" {
		return ed.files.SaveFile(*output, stored)
	}

	data, err := stored.Marshal()
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, string(data))
	return nil
}

func runExport(flags globalFlags, args []string, stdout io.Writer) error {
	flagSet := pflag.NewFlagSet("export", pflag.ContinueOnError)
	format := flagSet.StringP("format", "f", string(content.FormatMarkdown), "output format: html, markdown or json")
	filename, err := parseCommand(flagSet, args)
	if err != nil {
		return err
	}

	ed, err := NewEditor(flags)
	if err != nil {
		return err
	}
	defer ed.Cleanup()

	if err := ed.Open(filename); err != nil {
		return err
	}

	var out string
	ed.do(func() { out, err = ed.session.Export(content.FormatTag(*format)) })
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, strings.TrimRight(out, "\n"))
	return nil
}

func runEnvelope(args []string, stdout io.Writer) error {
	filename, err := parseCommand(pflag.NewFlagSet("envelope", pflag.ContinueOnError), args)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	stored, ok := content.Unmarshal(data)
	if !ok {
		return fmt.Errorf("%s is not a stored envelope", filename)
	}
	fmt.Fprintf(stdout, "format:  %s\n", stored.Format)
	fmt.Fprintf(stdout, "schema:  %d\n", stored.SchemaVersion)
	fmt.Fprintf(stdout, "savedAt: %s\n", stored.SavedTime().Format("2006-01-02 15:04:05"))
	return nil
}

func runStream(flags globalFlags, args []string, stdin io.Reader, stdout io.Writer) error {
	flagSet := pflag.NewFlagSet("stream", pflag.ContinueOnError)
	typing := flagSet.Bool("typing", false, "treat input as typing instead of a streaming response")
	filename, err := parseCommand(flagSet, args)
	if err != nil {
		return err
	}

	ed, err := NewEditor(flags)
	if err != nil {
		return err
	}
	defer ed.Cleanup()

	if err := ed.OpenOrCreate(filename); err != nil {
		return err
	}
	if err := ed.session.Start(); err != nil {
		return err
	}

	// シグナルハンドリングの設定
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	streaming := !*typing
	if streaming {
		ed.do(ed.session.UX().EnableStreaming)
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

loop:
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			ed.do(func() { ed.surface.AppendParagraph(line, streaming) })
		case <-ctx.Done():
			break loop
		}
	}

	if streaming {
		ed.do(ed.session.UX().DisableStreaming)
	}
	ed.do(func() { err = ed.session.Render(ctx) })
	if err != nil {
		return err
	}
	if err := ed.Save(); err != nil {
		return err
	}
	printSummary(ed, stdout)
	return nil
}

// printSummary は健全性と性能の要約を出力する
func printSummary(ed *Editor, stdout io.Writer) {
	var (
		sample  perf.Sample
		recs    []perf.Recommendation
		issues  []string
		summary string
	)
	ed.do(func() {
		record := ed.session.Health().CheckNow()
		summary = record.State.String()
		issues = record.Messages()
		sample = ed.session.Perf().MeasureNow()
		recs = ed.session.Perf().Analyze()
	})

	fmt.Fprintf(stdout, "saved:   %s\n", ed.files.GetFilename())
	fmt.Fprintf(stdout, "health:  %s\n", summary)
	for _, issue := range issues {
		fmt.Fprintf(stdout, "  - %s\n", issue)
	}
	fmt.Fprintf(stdout, "render:  %.2fms  update: %.2fms  nodes: %d  length: %d\n",
		sample.RenderTimeMs, sample.UpdateTimeMs, sample.DOMNodeCount, sample.ContentLength)
	for _, rec := range recs {
		fmt.Fprintf(stdout, "  [%s] %s\n", rec.Severity, rec.Message)
	}
}

func die(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

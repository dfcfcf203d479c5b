package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	formtree "github.com/formtree/formtree"
	_ "github.com/formtree/formtree/source" // default JSON driver selection
	"gopkg.in/yaml.v3"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "extract":
		extractCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "formtree CLI\n\nUsage:\n  formtree extract [-query Q] [-content-type CT] [-in FILE] [-format yaml|json]\n\nNotes:\n  - Reads the body from FILE ('-' or empty for stdin) and prints the merged parameter tree.")
}

func extractCmd(args []string) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	var (
		query       string
		contentType string
		in          string
		format      string
		maxBytes    int64
	)
	fs.StringVar(&query, "query", "", "query string to merge as the base tree")
	fs.StringVar(&contentType, "content-type", "", "body Content-Type (empty: query only)")
	fs.StringVar(&in, "in", "-", "body input file, '-' for stdin")
	fs.StringVar(&format, "format", "yaml", "output format: yaml or json")
	fs.Int64Var(&maxBytes, "max-bytes", 0, "max body bytes (0: unlimited)")
	_ = fs.Parse(args)

	var body io.Reader
	if contentType != "" {
		if in == "" || in == "-" {
			body = os.Stdin
		} else {
			f, err := os.Open(in)
			if err != nil {
				fatalf("open: %v", err)
			}
			defer f.Close()
			body = f
		}
	}

	tree, err := formtree.Extract(context.Background(), query, contentType, body, formtree.Options{
		MaxTotalBytes: maxBytes,
	})
	if err != nil {
		fatalf("extract: %v", err)
	}
	defer tree.Close()

	switch format {
	case "json":
		out, err := tree.Root().MarshalJSON()
		if err != nil {
			fatalf("render: %v", err)
		}
		fmt.Println(string(out))
	case "yaml":
		out, err := yaml.Marshal(tree.Root())
		if err != nil {
			fatalf("render: %v", err)
		}
		fmt.Print(string(out))
	default:
		fatalf("unknown format %q", format)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

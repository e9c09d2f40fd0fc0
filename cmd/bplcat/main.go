// Copyright 2020 Michael J. Fromberger. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command bplcat inspects and builds bplist00 files.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/gobplist/bplist"
)

func main() {
	// --- Composition Root ---
	root := &cobra.Command{
		Use:   "bplcat",
		Short: "Inspect and build Apple binary property list files.",
		Long: `bplcat reads and writes bplist00 files: dump decodes one and
prints its value graph, create writes a small sample file.`,
	}
	root.AddCommand(newDumpCommand())
	root.AddCommand(newCreateCommand())
	// --- End Composition Root ---

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newDumpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <file>",
		Short: "Decode a bplist00 file and print its value graph.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open %s: %w", path, err)
			}
			defer f.Close()

			s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			s.Prefix = fmt.Sprintf("Decoding %s... ", path)
			s.Start()
			v, err := bplist.DecodeFrom(f)
			s.Stop()
			if err != nil {
				return fmt.Errorf("decode %s: %w", path, err)
			}

			printValue(os.Stdout, v, 0)
			return nil
		},
	}
}

func newCreateCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Write a small sample bplist00 file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return fmt.Errorf("--output is required")
			}
			sample := bplist.Dict(
				bplist.DictEntry{Key: bplist.String("name"), Value: bplist.String("bplcat")},
				bplist.DictEntry{Key: bplist.String("generated"), Value: bplist.Date(time.Now())},
				bplist.DictEntry{Key: bplist.String("values"), Value: bplist.Array(
					bplist.Int(1), bplist.Int(2), bplist.Int(3),
				)},
			)

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			defer f.Close()

			if err := bplist.EncodeTo(f, sample); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			fmt.Printf("wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "path to write (required)")
	return cmd
}

// printValue renders v as an indented tree, descending into arrays and
// dicts; each scalar kind gets its own one-line representation.
func printValue(w io.Writer, v bplist.Value, depth int) {
	indent := strings.Repeat("  ", depth)
	switch v.Kind() {
	case bplist.KindNull:
		fmt.Fprintln(w, indent+"null")
	case bplist.KindFill:
		fmt.Fprintln(w, indent+"fill")
	case bplist.KindTrue, bplist.KindFalse:
		b, _ := v.Bool()
		fmt.Fprintf(w, "%sbool: %v\n", indent, b)
	case bplist.KindInt:
		i, _ := v.Int()
		fmt.Fprintf(w, "%sint: %d\n", indent, i)
	case bplist.KindReal:
		f, _ := v.Real()
		fmt.Fprintf(w, "%sreal: %v\n", indent, f)
	case bplist.KindDate:
		d, _ := v.Date()
		fmt.Fprintf(w, "%sdate: %s\n", indent, d.Format(time.RFC3339))
	case bplist.KindData:
		b, _ := v.Data()
		fmt.Fprintf(w, "%sdata: %d bytes\n", indent, len(b))
	case bplist.KindAsciiString, bplist.KindUnicodeString:
		s, _ := v.Text()
		fmt.Fprintf(w, "%sstring: %q\n", indent, s)
	case bplist.KindUid:
		u, _ := v.Uid()
		fmt.Fprintf(w, "%suid: %d\n", indent, u)
	case bplist.KindArray:
		elems, _ := v.Array()
		fmt.Fprintf(w, "%sarray(%d):\n", indent, len(elems))
		for _, e := range elems {
			printValue(w, e, depth+1)
		}
	case bplist.KindDict:
		entries, _ := v.Dict()
		fmt.Fprintf(w, "%sdict(%d):\n", indent, len(entries))
		for _, e := range entries {
			k, _ := e.Key.Text()
			fmt.Fprintf(w, "%s  %q:\n", indent, k)
			printValue(w, e.Value, depth+2)
		}
	}
}

// Package repl implements the wut command's subcommands, following the
// teacher's cmd/commands.go convention of one init<Name> function per
// cobra.Command wired onto a shared root command.
package repl

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/peterh/liner"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bzczb/wut/collection"
	"github.com/bzczb/wut/index"
	"github.com/bzczb/wut/logging"
	"github.com/bzczb/wut/plan"
	"github.com/bzczb/wut/sqlfilter"
)

var parser = sqlfilter.NewParser()

const defaultHistoryFile = ".wut_history"

// RootCommand builds the wut root command with every subcommand attached.
func RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "wut",
		Short: "in-memory indexed object collection",
		Long:  "wut loads a JSON array of objects into an indexed, queryable in-memory collection.",
	}
	initRepl(root)
	return root
}

type replParams struct {
	file        string
	indexes     []string
	verbose     bool
	historyPath string
}

func initRepl(root *cobra.Command) {
	params := replParams{}
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "load objects from a JSON file and evaluate predicates read from stdin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRepl(params, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&params.file, "file", "", "path to a JSON file containing an array of objects")
	cmd.Flags().StringSliceVar(&params.indexes, "indexes", nil, "comma-separated attribute names to build hash indexes over")
	cmd.Flags().BoolVar(&params.verbose, "verbose", false, "log collection construction at debug level")
	cmd.Flags().StringVarP(&params.historyPath, "history", "H", historyPath(), "set path of history file")
	_ = cmd.MarkFlagRequired("file")
	root.AddCommand(cmd)
}

func historyPath() string {
	home := os.Getenv("HOME")
	if len(home) == 0 {
		return defaultHistoryFile
	}
	return path.Join(home, defaultHistoryFile)
}

func runRepl(params replParams, out io.Writer) error {
	objs, err := loadObjects(params.file)
	if err != nil {
		return err
	}

	idxs := make([]index.Index, 0, len(params.indexes))
	for _, attr := range params.indexes {
		idxs = append(idxs, index.NewHashIndex(index.DefaultParams(attr)))
	}

	var logger logging.Logger = logging.NoOp()
	if params.verbose {
		l := logrus.New()
		l.SetLevel(logrus.DebugLevel)
		logger = logging.NewFromLogrus(l)
	}

	c, err := collection.New(objs,
		collection.WithIndexes[map[string]any](idxs...),
		collection.WithIdentity(objectIdentity),
		collection.WithLogger[map[string]any](logger),
	)
	if err != nil {
		return fmt.Errorf("wut: building collection: %w", err)
	}

	fmt.Fprintf(out, "loaded %d objects, %d indexes\n", c.Len(), len(params.indexes))

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	loadHistory(line, params.historyPath)

	for {
		input, err := line.Prompt("wut> ")
		if err == io.EOF || err == liner.ErrPromptAborted {
			break
		}
		if err != nil {
			return fmt.Errorf("wut: reading input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		line.AppendHistory(input)
		if err := evalLine(c, input, out); err != nil {
			fmt.Fprintln(out, "error:", err)
		}
	}

	saveHistory(line, params.historyPath)
	return nil
}

func loadHistory(line *liner.State, path string) {
	if f, err := os.Open(path); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
}

func saveHistory(line *liner.State, path string) {
	if f, err := os.Create(path); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

func evalLine(c *collection.Collection[map[string]any], line string, out io.Writer) error {
	condition, err := parser.Parse(line)
	if err != nil {
		return err
	}

	p := c.Plan(condition)
	fmt.Fprintln(out, "plan:")
	fmt.Fprintln(out, plan.Render(p))

	optimized := c.Optimize(p)
	fmt.Fprintln(out, "optimized:")
	fmt.Fprintln(out, plan.Render(optimized))

	rows, err := c.Execute(optimized)
	if err != nil {
		return err
	}

	ids := rows.ToSlice()
	fmt.Fprintf(out, "matched %d objects:\n", len(ids))
	for _, obj := range c.ListObjects(ids) {
		b, err := json.Marshal(obj)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(b))
	}
	return nil
}

func loadObjects(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wut: opening %s: %w", path, err)
	}
	defer f.Close()

	var objs []map[string]any
	if err := json.NewDecoder(f).Decode(&objs); err != nil {
		return nil, fmt.Errorf("wut: decoding %s: %w", path, err)
	}
	return objs, nil
}

// objectIdentity gives map[string]any objects a comparable identity key: a
// map is not a valid Go map key, so identity falls back to its JSON
// encoding, matching the teacher's convention (ast.Term.Hash) of deriving a
// stable identity from a canonical serialization rather than requiring the
// caller's value to be natively comparable.
func objectIdentity(obj map[string]any) any {
	b, err := json.Marshal(obj)
	if err != nil {
		return fmt.Sprintf("%v", obj)
	}
	return string(b)
}

// Package main implements the restructure CLI. It provides commands for
// validating graph definitions, printing restructured region trees, and
// comparing graph traces against tree execution.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cfgkit/restructure"
	"github.com/cfgkit/restructure/region"
	"github.com/cfgkit/restructure/scfg"
)

var (
	headStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func main() {
	root := &cobra.Command{
		Use:           "restructure",
		Short:         "Convert control-flow graphs into region trees",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	checkCmd := &cobra.Command{
		Use:   "check <graph>",
		Short: "Validate a graph definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args[0])
		},
	}

	treeCmd := &cobra.Command{
		Use:   "tree <graph>",
		Short: "Restructure a graph and print the region tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			return runTree(args[0], verbose)
		},
	}
	treeCmd.Flags().BoolP("verbose", "v", false, "Log restructuring passes")

	traceCmd := &cobra.Command{
		Use:   "trace <graph>",
		Short: "Execute the graph and its region tree, comparing traces",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			choices, _ := cmd.Flags().GetStringArray("choose")
			limit, _ := cmd.Flags().GetInt("limit")
			return runTrace(args[0], choices, limit)
		},
	}
	traceCmd.Flags().StringArray("choose", nil,
		"Branch choices as label=v1,v2,... (per visit, last repeats; default 0)")
	traceCmd.Flags().Int("limit", 10000, "Visit limit")

	convertCmd := &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert a graph definition between YAML and msgpack",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := scfg.LoadFile(args[0])
			if err != nil {
				return err
			}
			return scfg.SaveFile(args[1], g)
		},
	}

	root.AddCommand(checkCmd, treeCmd, traceCmd, convertCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, failStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

func runCheck(path string) error {
	g, err := scfg.LoadFile(path)
	if err != nil {
		return err
	}
	fmt.Println(headStyle.Render("graph ") + path)
	fmt.Printf("blocks: %d\n", g.Len())
	fmt.Printf("entry:  %s\n", g.Entry())
	exits := make([]string, 0, len(g.Exits()))
	for _, x := range g.Exits() {
		exits = append(exits, string(x))
	}
	fmt.Printf("exits:  %s\n", strings.Join(exits, ", "))
	fmt.Println(okStyle.Render("ok"))
	return nil
}

func runTree(path string, verbose bool) error {
	g, err := scfg.LoadFile(path)
	if err != nil {
		return err
	}

	cfg := restructure.Config{}
	if verbose {
		log, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer log.Sync()
		cfg.Logger = log
	}

	res, err := restructure.Restructure(g, cfg)
	if err != nil {
		return err
	}

	fmt.Println(headStyle.Render("region tree"))
	fmt.Print(region.Dump(res.Tree))

	if res.Vars.Len() == 0 {
		fmt.Println(dimStyle.Render("no control variables"))
		return nil
	}
	fmt.Println(headStyle.Render("control variables"))
	for _, v := range res.Vars.All() {
		sites := make([]string, len(v.Sites))
		for i, s := range v.Sites {
			sites[i] = fmt.Sprintf("%s=%d", s.At, s.Value)
		}
		fmt.Printf("v%d %s [%s]\n", v.Var, v.Role, strings.Join(sites, " "))
	}
	return nil
}

func runTrace(path string, choices []string, limit int) error {
	g, err := scfg.LoadFile(path)
	if err != nil {
		return err
	}

	oracle, err := parseOracle(choices)
	if err != nil {
		return err
	}

	res, err := restructure.Restructure(g, restructure.Config{})
	if err != nil {
		return err
	}

	want, err := g.Trace(oracle, limit)
	if err != nil {
		return err
	}
	got, err := region.Execute(res.Tree, oracle, limit)
	if err != nil {
		return err
	}

	fmt.Println(headStyle.Render("graph trace ") + render(want))
	fmt.Println(headStyle.Render("tree trace  ") + render(got))
	if equal(want, got) {
		fmt.Println(okStyle.Render("traces match"))
		return nil
	}
	return fmt.Errorf("traces differ")
}

// parseOracle builds an oracle from label=v1,v2,... specs. Visits past the
// list repeat the last value; unlisted blocks answer 0.
func parseOracle(choices []string) (scfg.Oracle, error) {
	table := make(map[scfg.Label][]int64)
	for _, c := range choices {
		label, vals, ok := strings.Cut(c, "=")
		if !ok {
			return nil, fmt.Errorf("bad choice %q, want label=v1,v2,...", c)
		}
		for _, v := range strings.Split(vals, ",") {
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("bad choice %q: %w", c, err)
			}
			table[scfg.Label(label)] = append(table[scfg.Label(label)], n)
		}
	}
	return func(at scfg.Label, visit int) int64 {
		vals := table[at]
		if len(vals) == 0 {
			return 0
		}
		if visit >= len(vals) {
			return vals[len(vals)-1]
		}
		return vals[visit]
	}, nil
}

func render(trace []scfg.Label) string {
	parts := make([]string, len(trace))
	for i, l := range trace {
		parts[i] = string(l)
	}
	return strings.Join(parts, " -> ")
}

func equal(a, b []scfg.Label) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

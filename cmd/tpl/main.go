package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rainfd/template-engine-plus/pkg/manifest"
	slk "github.com/rainfd/template-engine-plus/pkg/starlark"
	"github.com/rainfd/template-engine-plus/pkg/templet"
)

var (
	nsFile      string
	contextFile string
	filtersFile string
	bundleFile  string
	tplName     string
	outputFile  string
)

var rootCmd = cobra.Command{
	Use:   "tpl",
	Short: "Compile and render text templates",
}

var renderCmd = cobra.Command{
	Use:   "render [template]",
	Short: "Render a template file or a bundle template",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := loadContext(contextFile)
		if err != nil {
			return err
		}

		var out string
		if bundleFile != "" {
			b, err := manifest.Load(bundleFile)
			if err != nil {
				return err
			}
			if tplName != "" {
				out, err = b.Render(tplName, ctx)
			} else {
				out, err = b.RenderEntry(ctx)
			}
			if err != nil {
				return err
			}
		} else {
			t, err := compileFromArgs(args)
			if err != nil {
				return err
			}
			out, err = t.Render(ctx)
			if err != nil {
				return err
			}
		}
		return writeOutput(out)
	},
}

var checkCmd = cobra.Command{
	Use:   "check [template]",
	Short: "Compile a template or bundle and report errors",
	RunE: func(cmd *cobra.Command, args []string) error {
		if bundleFile != "" {
			b, err := manifest.Load(bundleFile)
			if err != nil {
				return err
			}
			for name := range b.Templates {
				if _, err := b.Compile(name); err != nil {
					return err
				}
			}
			fmt.Println("ok")
			return nil
		}
		if _, err := compileFromArgs(args); err != nil {
			return err
		}
		fmt.Println("ok")
		return nil
	},
}

var astCmd = cobra.Command{
	Use:   "ast [template]",
	Short: "Print the compiled node tree of a template",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTarget(args)
		if err != nil {
			return err
		}
		fmt.Print(templet.Pretty(t))
		return nil
	},
}

var outputsCmd = cobra.Command{
	Use:   "outputs",
	Short: "Render all output targets of a bundle to their files",
	RunE: func(cmd *cobra.Command, args []string) error {
		if bundleFile == "" {
			return fmt.Errorf("outputs requires --bundle")
		}
		b, err := manifest.Load(bundleFile)
		if err != nil {
			return err
		}
		ctx, err := loadContext(contextFile)
		if err != nil {
			return err
		}
		rendered, err := b.RenderOutputs(ctx)
		if err != nil {
			return err
		}
		for path, text := range rendered {
			if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			slog.Info("wrote output", "path", path, "bytes", len(text))
		}
		return nil
	},
}

// loadTarget compiles the requested template: a bundle member when
// --bundle and --template are given, otherwise the file argument.
func loadTarget(args []string) (*templet.Template, error) {
	if bundleFile != "" && tplName != "" {
		b, err := manifest.Load(bundleFile)
		if err != nil {
			return nil, err
		}
		return b.Compile(tplName)
	}
	return compileFromArgs(args)
}

// compileFromArgs reads template source from the file argument (or stdin
// for "-") and compiles it against the namespace assembled from --ns and
// --filters.
func compileFromArgs(args []string) (*templet.Template, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no template specified")
	}
	src, err := readSource(args[0])
	if err != nil {
		return nil, err
	}
	ns, err := loadNamespace()
	if err != nil {
		return nil, err
	}
	return templet.Compile(src, ns)
}

func readSource(arg string) (string, error) {
	if arg == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return "", fmt.Errorf("reading template: %w", err)
	}
	return string(data), nil
}

func loadNamespace() (templet.Context, error) {
	ns, err := loadContext(nsFile)
	if err != nil {
		return nil, err
	}
	if filtersFile != "" {
		script, err := os.ReadFile(filtersFile)
		if err != nil {
			return nil, fmt.Errorf("reading filters: %w", err)
		}
		filters, err := slk.LoadFilters(string(script))
		if err != nil {
			return nil, err
		}
		ns = filters.Merge(ns)
	}
	return ns, nil
}

func loadContext(path string) (templet.Context, error) {
	if path == "" {
		return templet.Context{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading context: %w", err)
	}
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	vars := map[string]any{}
	if err := dec.Decode(&vars); err != nil {
		return nil, fmt.Errorf("decoding context: %w", err)
	}
	return templet.NewContext(vars), nil
}

func writeOutput(out string) error {
	if outputFile == "" || outputFile == "-" {
		fmt.Print(out)
		return nil
	}
	if err := os.WriteFile(outputFile, []byte(out), 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&nsFile, "ns", "", "YAML file of compile-time namespace values")
	rootCmd.PersistentFlags().StringVar(&contextFile, "context", "", "YAML file of render-time values")
	rootCmd.PersistentFlags().StringVar(&filtersFile, "filters", "", "Starlark script defining filter functions")
	rootCmd.PersistentFlags().StringVar(&bundleFile, "bundle", "", "YAML template bundle to operate on")
	rootCmd.PersistentFlags().StringVar(&tplName, "template", "", "Template name within the bundle")
	renderCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write rendered text to this file")
	rootCmd.AddCommand(&renderCmd)
	rootCmd.AddCommand(&checkCmd)
	rootCmd.AddCommand(&astCmd)
	rootCmd.AddCommand(&outputsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

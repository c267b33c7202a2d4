package main

import (
	"errors"
	"fmt"
	"sort"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/skeinlang/skein/pkg/ast"
	"github.com/skeinlang/skein/pkg/typer"
	"github.com/skeinlang/skein/pkg/types"
)

var (
	styleName      = lipgloss.NewStyle().Bold(true)
	stylePure      = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // green
	styleImpure    = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // yellow
	styleControl   = lipgloss.NewStyle().Foreground(lipgloss.Color("5")) // magenta
	styleError     = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // red
	styleScheme    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // gray
	styleHeading   = lipgloss.NewStyle().Bold(true).Underline(true)
	styleRecovered = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

func demoCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Check the built-in showcase program",
		Long: `demo type-checks a small program exercising polymorphism, effect
rows, handlers, records, classes, and enums, then prints the inferred
signature and purity of every definition. One definition is deliberately
wrong so the output shows a diagnostic and the recovered stub.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := loadOptions(cfg)
			root := demoProgram()

			checker, err := typer.New(root, opts)
			if err != nil {
				return err
			}

			typed, checkErr := checker.CheckAll(cmd.Context())
			if typed == nil {
				return checkErr
			}

			printTypedRoot(cmd, root, typed)

			if checkErr != nil {
				var diags *typer.InferenceErrors
				if !errors.As(checkErr, &diags) {
					return checkErr
				}
				cmd.Println()
				cmd.Println(styleHeading.Render("Diagnostics"))
				for _, d := range diags.Errors {
					cmd.Println(styleError.Render("  error:"), d.Error())
				}
				return fmt.Errorf("%d of %d definitions failed to check", diags.Len(), len(root.Defs))
			}
			return nil
		},
	}
}

func printTypedRoot(cmd *cobra.Command, root *ast.Root, typed *ast.TypedRoot) {
	cmd.Println(styleHeading.Render("Definitions"))
	for _, def := range root.Defs {
		td, ok := typed.Defs[def.Sym]
		if !ok {
			continue
		}
		printDef(cmd, td)
	}

	if len(typed.Sigs) > 0 {
		cmd.Println()
		cmd.Println(styleHeading.Render("Class signatures"))
		sigs := make([]*ast.TypedSig, 0, len(typed.Sigs))
		for _, ts := range typed.Sigs {
			sigs = append(sigs, ts)
		}
		sort.Slice(sigs, func(i, j int) bool {
			return sigs[i].Sym.String() < sigs[j].Sym.String()
		})
		for _, ts := range sigs {
			line := fmt.Sprintf("  %s : %s",
				styleName.Render(ts.Sym.String()),
				styleScheme.Render(types.NewFormatter().FormatScheme(ts.Scheme)))
			cmd.Println(line)
		}
	}

	if len(typed.Instances) > 0 {
		cmd.Println()
		cmd.Println(styleHeading.Render("Instances"))
		for _, ti := range typed.Instances {
			header := fmt.Sprintf("  instance %s[%s]",
				ti.Class.String(),
				types.NewFormatter().FormatType(ti.Tpe))
			cmd.Println(styleName.Render(header))
			for _, td := range ti.Defs {
				printDef(cmd, td)
			}
		}
	}
}

func printDef(cmd *cobra.Command, td *ast.TypedDef) {
	line := fmt.Sprintf("  %s : %s %s",
		styleName.Render(td.Sym.Name),
		styleScheme.Render(types.NewFormatter().FormatScheme(td.Scheme)),
		purityBadge(td.Purity))
	if td.Recovered {
		line += " " + styleRecovered.Render("[recovered]")
	}
	cmd.Println(line)
}

func purityBadge(p types.Purity) string {
	switch p {
	case types.PurityPure:
		return stylePure.Render("pure")
	case types.PurityImpure:
		return styleImpure.Render("impure")
	default:
		return styleControl.Render("control-impure")
	}
}

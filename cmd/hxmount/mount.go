package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/pthm/hxmount"
	"github.com/pthm/hxmount/lib/dom"
)

func mountCmd(g *globalFlags) *cobra.Command {
	var (
		output    string
		globals   string
		selector  string
		legacy    bool
		roundtrip bool
		strict    bool
	)

	cmd := &cobra.Command{
		Use:   "mount <page.html>",
		Short: "Mount the islands of an HTML page",
		Long: `Mount every placeholder of an HTML page and print the result.

Placeholders that fail to mount are reported on stderr and left in place.
With --roundtrip the page is unmounted again and compared with the input;
any difference is an error.

Examples:
  hxmount mount page.html -m components.hcl
  hxmount mount page.html -m components.hcl -o out.html
  hxmount mount page.html --globals session.json --strict`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(g, cmd.ErrOrStderr(), envOptions{legacy: legacy})
			if err != nil {
				return err
			}

			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read page: %w", err)
			}
			doc, err := dom.Parse(string(src))
			if err != nil {
				return fmt.Errorf("failed to parse page: %w", err)
			}
			before, err := dom.Render(doc)
			if err != nil {
				return err
			}

			var (
				mu     sync.Mutex
				failed []error
			)
			opts := []hxmount.RendererOption{
				hxmount.WithLogger(e.logger),
				hxmount.WithErrorHandler(func(err error) {
					mu.Lock()
					defer mu.Unlock()
					failed = append(failed, err)
					e.logger.Warn("placeholder not mounted", "error", err)
				}),
			}
			if selector != "" {
				opts = append(opts, hxmount.WithSelector(selector))
			}
			if globals != "" {
				ns, err := readGlobals(globals)
				if err != nil {
					return err
				}
				opts = append(opts, hxmount.WithGlobals(ns))
			}

			r, err := hxmount.NewRenderer(e.registry, doc, opts...)
			if err != nil {
				return err
			}
			if err := r.Mount(cmd.Context(), nil, nil); err != nil {
				return err
			}
			mounted, err := dom.Render(doc)
			if err != nil {
				return err
			}

			if roundtrip {
				if err := r.Unmount(cmd.Context(), nil, nil); err != nil {
					return err
				}
				after, err := dom.Render(doc)
				if err != nil {
					return err
				}
				if after != before {
					return errors.New("roundtrip mismatch: unmounted page differs from input")
				}
				e.logger.Info("roundtrip ok", "page", args[0])
			}

			if strict && len(failed) > 0 {
				return fmt.Errorf("%d placeholder(s) failed to mount: %w", len(failed), errors.Join(failed...))
			}

			if output == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), mounted)
				return err
			}
			return os.WriteFile(output, []byte(mounted), 0o644)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the mounted page to a file instead of stdout")
	cmd.Flags().StringVar(&globals, "globals", "", "JSON file used for data-g-prop-* lookups")
	cmd.Flags().StringVar(&selector, "selector", "", "Placeholder attribute (default data-rr)")
	cmd.Flags().BoolVar(&legacy, "legacy", false, "Use the legacy factory (single root element per component)")
	cmd.Flags().BoolVar(&roundtrip, "roundtrip", false, "Unmount after mounting and verify the page is restored")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when any placeholder cannot be mounted")

	return cmd
}

func readGlobals(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read globals: %w", err)
	}
	var ns map[string]any
	if err := json.Unmarshal(data, &ns); err != nil {
		return nil, fmt.Errorf("failed to parse globals: %w", err)
	}
	return ns, nil
}

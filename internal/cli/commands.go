package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	j "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	bk "github.com/reoring/blockkit"
	"github.com/reoring/blockkit/blocks"
	js "github.com/reoring/blockkit/jsonschema"
)

func newValidateCmd(e *env) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate [file|glob|-]...",
		Short: "Report every violation in the given payloads",
		Long: `Validate decodes each payload (JSON, or YAML for .yaml/.yml files) and
prints every violation with its full path. Nested violations are reported at
the leaf attribute that failed. Standard input is read when no file is given.

JSON object keys given more than once are logged as warnings, since only the
last value is kept. With --strict they are reported as violations.`,
		Example: `  # Validate one modal
  blockkit validate views/survey.json

  # Validate every view below a directory
  blockkit validate 'views/**/*.{json,yaml}'

  # Validate a single block from stdin
  cat section.json | blockkit validate --root block`,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := expand(args, e.cfg.MaxFiles)
			if err != nil {
				return &ExitError{Code: ExitUsage, Err: err}
			}
			ctx := e.context(cmd.Context())
			invalid := 0
			for _, name := range names {
				p, err := load(name, cmd.InOrStdin(), e.resolver)
				if err != nil {
					return &ExitError{Code: ExitUsage, Err: err}
				}
				errs := p.doc.Validate(ctx)
				dups, err := duplicates(p)
				if err != nil {
					return &ExitError{Code: ExitUsage, Err: err}
				}
				if strict {
					errs = append(errs, dups...)
				} else {
					for _, d := range dups {
						e.log.WarnContext(ctx, "duplicate key", "file", name, "path", d.Path)
					}
				}
				report(e.out, name, errs)
				if len(errs) > 0 {
					invalid++
				}
			}
			if invalid > 0 {
				return &ExitError{Code: ExitInvalid, Err: fmt.Errorf("%d of %d payloads invalid", invalid, len(names))}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "report duplicate JSON object keys as violations")
	return cmd
}

// duplicates scans JSON payloads for repeated object keys. YAML decoding
// already rejects them.
func duplicates(p payload) (bk.ValidationErrors, error) {
	if p.yaml {
		return nil, nil
	}
	errs, err := bk.DuplicateKeys(p.raw, -1)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.name, err)
	}
	return errs, nil
}

func newFixCmd(e *env) *cobra.Command {
	var (
		dangerous bool
		write     bool
		ensureIDs bool
	)
	cmd := &cobra.Command{
		Use:   "fix [file|glob|-]...",
		Short: "Repair payloads and print (or write back) the result",
		Long: `Fix runs the configured fixers on each payload: strings and lists over their
limits are truncated, values outside their allowed set are removed, and fixes
cascade into nested elements. Fixers that may change what a payload means
(dropping list entries, identifiers or selections) only run with --dangerous.

Payloads still invalid after fixing are reported on stderr and make the
command exit with status 1. Only the first document of a multi-document YAML
file is fixed, so -w refuses such files rather than drop the others.`,
		Example: `  # Print the repaired modal
  blockkit fix views/survey.json

  # Repair in place, allowing dangerous fixers, and fill missing block_id values
  blockkit fix -w --dangerous --ensure-block-ids 'views/**/*.json'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("dangerous") {
				e.cfg.Dangerous = dangerous
			}
			names, err := expand(args, e.cfg.MaxFiles)
			if err != nil {
				return &ExitError{Code: ExitUsage, Err: err}
			}
			ctx := e.context(cmd.Context())
			invalid := 0
			for _, name := range names {
				p, err := load(name, cmd.InOrStdin(), e.resolver)
				if err != nil {
					return &ExitError{Code: ExitUsage, Err: err}
				}
				if write && p.docs > 1 {
					return &ExitError{Code: ExitUsage, Err: fmt.Errorf("%s: holds %d YAML documents; -w only rewrites single-document files", name, p.docs)}
				}
				if ensureIDs {
					if n := blocks.EnsureBlockIDs(p.doc, nil); n > 0 {
						e.log.InfoContext(ctx, "assigned block ids", "file", name, "count", n)
					}
				}
				if !p.doc.Fix(ctx, e.cfg.Dangerous) {
					invalid++
					report(cmd.ErrOrStderr(), name, p.doc.Validate(ctx))
				}
				data, err := encode(p, e.cfg.Indent)
				if err != nil {
					return &ExitError{Code: ExitUsage, Err: err}
				}
				if write && name != stdinName {
					if err := os.WriteFile(name, data, 0o644); err != nil {
						return &ExitError{Code: ExitUsage, Err: fmt.Errorf("write %s: %w", name, err)}
					}
					e.log.InfoContext(ctx, "wrote fixed payload", "file", name)
					continue
				}
				if _, err := e.out.Write(data); err != nil {
					return err
				}
			}
			if invalid > 0 {
				return &ExitError{Code: ExitInvalid, Err: fmt.Errorf("%d of %d payloads still invalid after fixing", invalid, len(names))}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dangerous, "dangerous", false, "also run fixers that may change the payload's meaning")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write results back to their files instead of stdout")
	cmd.Flags().BoolVar(&ensureIDs, "ensure-block-ids", false, "assign a random block_id to blocks without one")
	return cmd
}

// schemaTargets lists what the schema command can describe.
var schemaTargets = map[string]func() *js.Schema{
	"surface": blocks.Surface.JSONSchema,
	"block":   blocks.Block.JSONSchema,
	"modal":   blocks.Modal.JSONSchema,
	"home":    blocks.Home.JSONSchema,
	"section": blocks.Section.JSONSchema,
	"actions": blocks.Actions.JSONSchema,
	"context": blocks.Context.JSONSchema,
	"divider": blocks.Divider.JSONSchema,
	"header":  blocks.Header.JSONSchema,
	"image":   blocks.Image.JSONSchema,
	"input":   blocks.Input.JSONSchema,
}

func newSchemaCmd(e *env) *cobra.Command {
	targets := make([]string, 0, len(schemaTargets))
	for name := range schemaTargets {
		targets = append(targets, name)
	}
	sort.Strings(targets)

	return &cobra.Command{
		Use:       "schema [target]",
		Short:     "Print the JSON Schema of a payload kind",
		Long:      "Schema prints a JSON Schema for one of: " + strings.Join(targets, ", ") + ".\nWithout a target it describes the configured root.",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: targets,
		RunE: func(_ *cobra.Command, args []string) error {
			var s *js.Schema
			if len(args) == 0 {
				s = e.resolver.JSONSchema()
			} else {
				fn, ok := schemaTargets[args[0]]
				if !ok {
					return &ExitError{Code: ExitUsage, Err: fmt.Errorf("unknown schema target %q (want one of %s)", args[0], strings.Join(targets, ", "))}
				}
				s = fn()
			}
			data, err := j.MarshalIndent(s, "", e.cfg.Indent)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(e.out, "%s\n", data)
			return err
		},
	}
}

// report prints one line per leaf violation.
func report(w io.Writer, name string, errs bk.ValidationErrors) {
	if len(errs) == 0 {
		fmt.Fprintf(w, "%s: ok\n", name)
		return
	}
	flat := errs.Flatten()
	fmt.Fprintf(w, "%s: %d error(s)\n", name, len(flat))
	for _, e := range flat {
		path := e.Path
		if path == "" {
			path = "(base)"
		}
		fmt.Fprintf(w, "  %s: %s [%s]\n", path, e.Message, e.Code)
	}
}

func encode(p payload, indent string) ([]byte, error) {
	if p.yaml {
		data, err := yaml.Marshal(p.doc.ToJSON())
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", p.name, err)
		}
		return data, nil
	}
	data, err := bk.MarshalIndent(p.doc, indent)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", p.name, err)
	}
	return append(data, '\n'), nil
}

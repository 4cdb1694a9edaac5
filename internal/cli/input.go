package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	bk "github.com/reoring/blockkit"
)

// stdinName stands for standard input in argument lists.
const stdinName = "-"

// payload is one decoded input file. Only the first document of a YAML
// stream is decoded; docs counts them all.
type payload struct {
	name string
	yaml bool
	raw  []byte
	docs int
	doc  *bk.Document
}

// expand turns arguments into file names. Arguments containing glob
// metacharacters are expanded with doublestar (so "views/**/*.json" works);
// plain names are kept as given. No arguments means standard input.
func expand(args []string, maxFiles int) ([]string, error) {
	if len(args) == 0 {
		return []string{stdinName}, nil
	}
	var out []string
	seen := map[string]bool{}
	for _, arg := range args {
		if arg == stdinName || !strings.ContainsAny(arg, "*?[{") {
			if !seen[arg] {
				seen[arg] = true
				out = append(out, arg)
			}
			continue
		}
		if !doublestar.ValidatePattern(filepath.ToSlash(arg)) {
			return nil, fmt.Errorf("invalid pattern %q", arg)
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", arg)
		}
		if len(matches) > maxFiles {
			return nil, fmt.Errorf("%q matches %d files (limit %d)", arg, len(matches), maxFiles)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func isYAML(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// load reads and decodes one input. Standard input is read as JSON.
func load(name string, stdin io.Reader, r *bk.Resolver) (payload, error) {
	var (
		data []byte
		err  error
	)
	if name == stdinName {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return payload{}, fmt.Errorf("read %s: %w", name, err)
	}
	p := payload{name: name, yaml: isYAML(name), raw: data, docs: 1}
	if p.yaml {
		var docs []any
		if docs, err = bk.ParseYAML(data); err == nil {
			p.docs = len(docs)
			p.doc, err = bk.DecodeYAML(data, r)
		}
	} else {
		p.doc, err = bk.DecodeJSON(data, r)
	}
	if err != nil {
		return payload{}, fmt.Errorf("%s: %w", name, err)
	}
	return p, nil
}

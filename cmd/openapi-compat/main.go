// Command openapi-compat fails when the API description drops a path,
// operation or response code that an earlier snapshot had. Without -revision
// the document generated into the docs package is checked.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"craftnexus/docs"

	"gopkg.in/yaml.v3"
)

var methods = map[string]bool{
	"get": true, "put": true, "post": true, "delete": true,
	"patch": true, "head": true, "options": true,
}

type document struct {
	Paths map[string]map[string]struct {
		Responses map[string]yaml.Node `yaml:"responses"`
	} `yaml:"paths"`
}

// surface is path -> method -> response codes.
type surface map[string]map[string]map[string]bool

func main() {
	basePath := flag.String("base", "", "snapshot to compare against (swagger JSON or YAML)")
	revisionPath := flag.String("revision", "", "document to check (defaults to the generated docs)")
	write := flag.String("write", "", "write the generated document to this path and exit")
	flag.Parse()

	if *write != "" {
		if err := os.WriteFile(*write, []byte(docs.SwaggerInfo.ReadDoc()), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write snapshot: %v\n", err)
			os.Exit(1)
		}
		return
	}
	if strings.TrimSpace(*basePath) == "" {
		fmt.Fprintln(os.Stderr, "usage: openapi-compat -base <snapshot> [-revision <path>] | -write <path>")
		os.Exit(2)
	}

	base, err := loadFile(*basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load base: %v\n", err)
		os.Exit(1)
	}

	var revision surface
	if *revisionPath != "" {
		revision, err = loadFile(*revisionPath)
	} else {
		revision, err = parse([]byte(docs.SwaggerInfo.ReadDoc()))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "load revision: %v\n", err)
		os.Exit(1)
	}

	if issues := compare(base, revision); len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "backward compatibility check failed:")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "- %s\n", issue)
		}
		os.Exit(1)
	}
	fmt.Println("openapi compatibility check passed")
}

func loadFile(path string) (surface, error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- dev tool, path from flags
	if err != nil {
		return nil, err
	}
	return parse(raw)
}

// parse accepts YAML or JSON, which is a subset of YAML.
func parse(raw []byte) (surface, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc.Paths == nil {
		return nil, fmt.Errorf("missing top-level paths field")
	}

	out := make(surface, len(doc.Paths))
	for path, ops := range doc.Paths {
		for method, op := range ops {
			method = strings.ToLower(strings.TrimSpace(method))
			if !methods[method] {
				continue
			}
			if out[path] == nil {
				out[path] = make(map[string]map[string]bool)
			}
			codes := make(map[string]bool, len(op.Responses))
			for code := range op.Responses {
				codes[strings.ToLower(strings.TrimSpace(code))] = true
			}
			out[path][method] = codes
		}
	}
	return out, nil
}

func compare(base, revision surface) []string {
	var issues []string
	for path, ops := range base {
		revOps, ok := revision[path]
		if !ok {
			issues = append(issues, "removed path: "+path)
			continue
		}
		for method, codes := range ops {
			revCodes, ok := revOps[method]
			if !ok {
				issues = append(issues, fmt.Sprintf("removed operation: %s %s", strings.ToUpper(method), path))
				continue
			}
			for code := range codes {
				if !revCodes[code] {
					issues = append(issues, fmt.Sprintf("removed response code: %s %s -> %s", strings.ToUpper(method), path, strings.ToUpper(code)))
				}
			}
		}
	}
	sort.Strings(issues)
	return issues
}

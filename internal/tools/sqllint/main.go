// Command sqllint checks that every SQL string constant starts with the
// --sql <uuid> audit line SQLRunner requires, and that no uuid is reused.
package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/infra"
)

var sqlKeywordPattern = regexp.MustCompile(`(?i)\b(select|insert|update|delete|with)\b`)

type violation struct {
	file    string
	name    string
	line    int
	message string
}

type statement struct {
	file string
	name string
	line int
	sql  string
}

func main() {
	flag.Parse()
	os.Exit(run(flag.Args(), os.Stderr))
}

func run(targets []string, stderr io.Writer) int {
	if len(targets) == 0 {
		targets = []string{"."}
	}
	var stmts []statement
	for _, target := range targets {
		found, err := collect(target)
		if err != nil {
			fmt.Fprintf(stderr, "sqllint: %v\n", err)
			return 1
		}
		stmts = append(stmts, found...)
	}

	violations := check(stmts)
	if len(violations) == 0 {
		return 0
	}
	fmt.Fprintln(stderr, "sqllint: SQL audit marker problems")
	for _, v := range violations {
		fmt.Fprintf(stderr, "  %s:%d %s (%s)\n", v.file, v.line, v.message, v.name)
	}
	return 1
}

// collect walks target, skipping hidden, vendor and test files.
func collect(target string) ([]statement, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if filepath.Ext(target) != ".go" {
			return nil, nil
		}
		return statementsIn(target)
	}
	var out []statement
	err = filepath.WalkDir(target, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != target && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		found, err := statementsIn(path)
		if err != nil {
			return err
		}
		out = append(out, found...)
		return nil
	})
	return out, err
}

// statementsIn returns the string constants and variables of path that look
// like SQL.
func statementsIn(path string) ([]statement, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, 0)
	if err != nil {
		return nil, err
	}
	var out []statement
	ast.Inspect(file, func(n ast.Node) bool {
		vs, ok := n.(*ast.ValueSpec)
		if !ok {
			return true
		}
		for i, value := range vs.Values {
			bl, ok := value.(*ast.BasicLit)
			if !ok || bl.Kind != token.STRING {
				continue
			}
			raw, err := unquote(bl.Value)
			if err != nil || !sqlKeywordPattern.MatchString(raw) {
				continue
			}
			name := ""
			if i < len(vs.Names) && vs.Names[i] != nil {
				name = vs.Names[i].Name
			}
			out = append(out, statement{file: path, name: name, line: fset.Position(bl.Pos()).Line, sql: raw})
		}
		return true
	})
	return out, nil
}

func check(stmts []statement) []violation {
	var violations []violation
	seen := make(map[string]statement)
	for _, s := range stmts {
		marker, _, err := infra.ExtractMarker(s.sql)
		if err != nil {
			violations = append(violations, violation{file: s.file, name: s.name, line: s.line, message: "missing or invalid --sql <uuid> marker"})
			continue
		}
		if first, dup := seen[marker]; dup {
			violations = append(violations, violation{
				file:    s.file,
				name:    s.name,
				line:    s.line,
				message: fmt.Sprintf("marker %s already used by %s", marker, first.name),
			})
			continue
		}
		seen[marker] = s
	}
	return violations
}

func unquote(v string) (string, error) {
	if len(v) == 0 {
		return v, nil
	}
	if v[0] == '`' {
		return v[1 : len(v)-1], nil
	}
	return strconv.Unquote(v)
}

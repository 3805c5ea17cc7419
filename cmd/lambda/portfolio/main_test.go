package main

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"
)

// init builds the container from the environment, so the entry point is checked statically
func TestMainStartsLambdaHandler(t *testing.T) {
	file, err := parser.ParseFile(token.NewFileSet(), "main.go", nil, 0)
	if err != nil {
		t.Fatalf("Failed to parse main.go: %v", err)
	}

	var started bool
	ast.Inspect(file, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		pkg, ok := sel.X.(*ast.Ident)
		if ok && pkg.Name == "awslambda" && sel.Sel.Name == "Start" && len(call.Args) == 1 {
			if arg, ok := call.Args[0].(*ast.Ident); ok && arg.Name == "handler" {
				started = true
			}
		}
		return true
	})

	if !started {
		t.Error("Expected main to start the Lambda runtime with handler")
	}
}

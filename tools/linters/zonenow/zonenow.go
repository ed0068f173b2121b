// Package zonenow reports time.Now() calls whose zone is left to the host.
//
// Whether a task is due today depends on the configured location, so a
// wall-clock reading has to be pinned with .UTC() or .In(loc) where it is
// taken. Clocks injected as func() time.Time are not checked; only direct
// calls are.
//
// A //nolint or //nolint:zonenow comment on the same line or the line above
// suppresses the report.
package zonenow

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
	"golang.org/x/tools/go/types/typeutil"
)

// Analyzer reports unpinned time.Now() calls.
var Analyzer = &analysis.Analyzer{
	Name:     "zonenow",
	Doc:      "reports time.Now() calls not followed by .UTC() or .In(loc)",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

const message = "time.Now() should be pinned to a zone with .UTC() or .In(loc)"

type line struct {
	file string
	n    int
}

func run(pass *analysis.Pass) (any, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	pinned := make(map[*ast.CallExpr]bool)
	insp.Preorder([]ast.Node{(*ast.SelectorExpr)(nil)}, func(n ast.Node) {
		sel := n.(*ast.SelectorExpr)
		if sel.Sel.Name != "UTC" && sel.Sel.Name != "In" {
			return
		}
		if call, ok := ast.Unparen(sel.X).(*ast.CallExpr); ok && isTimeNow(pass.TypesInfo, call) {
			pinned[call] = true
		}
	})

	suppressed := suppressedLines(pass)
	insp.Preorder([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node) {
		call := n.(*ast.CallExpr)
		if pinned[call] || !isTimeNow(pass.TypesInfo, call) {
			return
		}
		pos := pass.Fset.Position(call.Pos())
		if suppressed[line{pos.Filename, pos.Line}] {
			return
		}
		pass.Reportf(call.Pos(), "%s", message)
	})

	return nil, nil
}

func isTimeNow(info *types.Info, call *ast.CallExpr) bool {
	fn, ok := typeutil.Callee(info, call).(*types.Func)
	if !ok || fn.Pkg() == nil {
		return false
	}
	return fn.Pkg().Path() == "time" && fn.Name() == "Now"
}

// suppressedLines collects the lines covered by a nolint comment: the
// comment's own line and the one after it.
func suppressedLines(pass *analysis.Pass) map[line]bool {
	out := make(map[line]bool)
	for _, f := range pass.Files {
		for _, cg := range f.Comments {
			for _, c := range cg.List {
				if !suppresses(c.Text) {
					continue
				}
				pos := pass.Fset.Position(c.Pos())
				out[line{pos.Filename, pos.Line}] = true
				out[line{pos.Filename, pos.Line + 1}] = true
			}
		}
	}
	return out
}

func suppresses(text string) bool {
	_, directive, ok := strings.Cut(text, "nolint")
	if !ok {
		return false
	}
	linters, scoped := strings.CutPrefix(directive, ":")
	if !scoped {
		return true
	}
	name, _, _ := strings.Cut(linters, " ")
	for _, l := range strings.Split(name, ",") {
		if l == Analyzer.Name {
			return true
		}
	}
	return false
}

// Command zonenow runs the zonenow analyzer standalone.
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/rezkam/gtf/tools/linters/zonenow"
)

func main() {
	singlechecker.Main(zonenow.Analyzer)
}

package sqldb

import (
	"fmt"
	"strings"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
)

// ValidateSingleSelect rejects anything but a single read-only SELECT
// statement, so the `query` option (§4.2) can never be used to smuggle a
// second statement or a mutating one past the connector. It parses with the
// TiDB SQL parser rather than pattern-matching, since that is the only way
// to reliably tell a single statement from a stacked one across dialect
// quoting and comment styles.
func ValidateSingleSelect(query string) error {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return fmt.Errorf("query option is empty")
	}

	p := parser.New()
	stmt, err := p.ParseOneStmt(trimmed, "", "")
	if err != nil {
		return fmt.Errorf("parsing query: %w", err)
	}

	if _, ok := stmt.(*ast.SelectStmt); !ok {
		return fmt.Errorf("query option must be a single SELECT statement, got %T", stmt)
	}

	return nil
}

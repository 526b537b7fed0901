package prepstatement

import (
	"github.com/go-faster/city"
	"github.com/sqlpipe/mywire/pkg/proto"
)

// PreparedStatementDefinition is the cached execution handle for one
// statement text: the server-assigned identifier plus the parameter and
// result-column definitions collected from the prepare response.
type PreparedStatementDefinition struct {
	Query       string
	StatementID uint32

	ParamDefs  []*proto.ColumnDefinition
	ColumnDefs []*proto.ColumnDefinition

	// how many definitions of each kind the prepare response still owes us
	pendingParams  int
	pendingColumns int
}

func NewDefinition(query string, resp *proto.PrepareOK) *PreparedStatementDefinition {
	return &PreparedStatementDefinition{
		Query:          query,
		StatementID:    resp.StatementID,
		pendingParams:  int(resp.ParamCount),
		pendingColumns: int(resp.ColumnCount),
	}
}

// Expects reports whether the definition still waits for column definitions
// from the prepare response.
func (d *PreparedStatementDefinition) Expects() bool {
	return d.pendingParams > 0 || d.pendingColumns > 0
}

// Add feeds one collected definition: parameters fill up first, result
// columns after, matching the order the server sends them in. It reports
// whether the definition was consumed as a parameter.
func (d *PreparedStatementDefinition) Add(def *proto.ColumnDefinition) bool {
	if d.pendingParams > 0 {
		d.ParamDefs = append(d.ParamDefs, def)
		d.pendingParams--
		return true
	}
	if d.pendingColumns > 0 {
		d.ColumnDefs = append(d.ColumnDefs, def)
		d.pendingColumns--
	}
	return false
}

// Hash is the statement-text hash used to tag log lines.
func (d *PreparedStatementDefinition) Hash() uint32 {
	return city.Hash32([]byte(d.Query))
}

// Cache maps statement text to its prepared definition. It is unbounded and
// lives for the connection's lifetime; all access happens on the dispatch
// goroutine, so no locking is needed. Eviction is an acknowledged gap.
type Cache struct {
	stmts map[string]*PreparedStatementDefinition
}

func NewCache() *Cache {
	return &Cache{
		stmts: map[string]*PreparedStatementDefinition{},
	}
}

func (c *Cache) Get(query string) (*PreparedStatementDefinition, bool) {
	d, ok := c.stmts[query]
	return d, ok
}

func (c *Cache) Store(d *PreparedStatementDefinition) {
	c.stmts[d.Query] = d
}

func (c *Cache) Len() int {
	return len(c.stmts)
}

package query

import (
	"strings"

	"OIerFinder/internal/interfaces"
)

// Op 比较运算符
type Op string

const (
	OpEq  Op = "="
	OpIn  Op = "IN"
	OpGte Op = ">="
	OpLte Op = "<="
)

// Cond 一个 (列, 运算符, 值) 条件
type Cond struct {
	Column string
	Op     Op
	Values []any
}

// Where 以 AND 连接的条件列表
type Where []Cond

// Eq column = v
func (w *Where) Eq(column string, v any) {
	*w = append(*w, Cond{Column: column, Op: OpEq, Values: []any{v}})
}

// Gte column >= v
func (w *Where) Gte(column string, v any) {
	*w = append(*w, Cond{Column: column, Op: OpGte, Values: []any{v}})
}

// Lte column <= v
func (w *Where) Lte(column string, v any) {
	*w = append(*w, Cond{Column: column, Op: OpLte, Values: []any{v}})
}

// In column IN (...)；空列表不产生条件，单值退化为等值比较
func In[T any](w *Where, column string, values []T) {
	switch len(values) {
	case 0:
		return
	case 1:
		w.Eq(column, values[0])
	default:
		*w = append(*w, Cond{Column: column, Op: OpIn, Values: interfaces.ToInterfaceSlice(values)})
	}
}

// ParamCount 编译后需要绑定的参数个数
func (w Where) ParamCount() int {
	n := 0
	for _, c := range w {
		n += len(c.Values)
	}
	return n
}

// Compile 编译为 "a = ? AND b IN (?,?)" 形式，绑定变量统一用 ?，
// postgres 下由 gorm 改写为 $n
func (w Where) Compile() (string, []any) {
	if len(w) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(w))
	params := make([]any, 0, w.ParamCount())
	for _, c := range w {
		switch c.Op {
		case OpIn:
			parts = append(parts, c.Column+" IN ("+placeholders(len(c.Values))+")")
		default:
			parts = append(parts, c.Column+" "+string(c.Op)+" ?")
		}
		params = append(params, c.Values...)
	}
	return strings.Join(parts, " AND "), params
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

// Chunk 按 size 切分，size<=0 时整体作为一块
func Chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 {
		return [][]T{items}
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for i := 0; i < len(items); i += size {
		end := min(i+size, len(items))
		chunks = append(chunks, items[i:end])
	}
	return chunks
}

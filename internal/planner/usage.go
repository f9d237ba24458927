package planner

import (
	"sync"

	"OIerFinder/internal/interfaces"
)

// Step 一次后端调用（或一次内存校验）的资源消耗
type Step struct {
	Name        string  `json:"name"`
	RowsRead    int64   `json:"rows_read"`
	RowsWritten int64   `json:"rows_written"`
	DurationMs  float64 `json:"duration_ms"`
}

// Usage 整个请求的调用轨迹与汇总
type Usage struct {
	mu               sync.Mutex
	Steps            []Step `json:"steps"`
	TotalRowsRead    int64  `json:"total_rows_read"`
	TotalRowsWritten int64  `json:"total_rows_written"`
}

// NewUsage 创建空轨迹
func NewUsage() *Usage {
	return &Usage{Steps: []Step{}}
}

// Add 追加一步并累加总量
func (u *Usage) Add(name string, meta interfaces.Meta) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Steps = append(u.Steps, Step{
		Name:        name,
		RowsRead:    meta.RowsRead,
		RowsWritten: meta.RowsWritten,
		DurationMs:  float64(meta.Duration.Microseconds()) / 1000,
	})
	u.TotalRowsRead += meta.RowsRead
	u.TotalRowsWritten += meta.RowsWritten
}

// Names 所有步骤名，按发生顺序
func (u *Usage) Names() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	names := make([]string, len(u.Steps))
	for i, s := range u.Steps {
		names[i] = s.Name
	}
	return names
}

package model

// RecordView Record ⋈ Contest 的一行，用于内存校验阶段
type RecordView struct {
	OIerUID      int64
	ContestID    int64
	Level        string
	Score        *float64
	Rank         *int
	Province     string
	SchoolID     int64
	Year         int
	FallSemester *bool
	Type         string
}

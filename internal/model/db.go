package model

import (
	"time"

	"gorm.io/datatypes"
)

// 表名与上游数据导入脚本生成的 oier_data.db 保持一致，sqlite 文件可直接挂载

// OIer 选手
type OIer struct {
	UID          int64   `gorm:"column:uid;primaryKey;autoIncrement:false;comment:选手ID"`
	Initials     string  `gorm:"column:initials;type:varchar(32);index;comment:姓名拼音首字母"`
	Name         string  `gorm:"column:name;type:varchar(64);not null;comment:姓名"`
	Gender       int     `gorm:"column:gender;type:int;default:0;comment:性别：1男 -1女 0未知"`
	EnrollMiddle int     `gorm:"column:enroll_middle;type:int;comment:初中入学年份"`
	OIerDBScore  float64 `gorm:"column:oierdb_score;type:numeric(12,4);comment:综合评分"`
	CCFScore     float64 `gorm:"column:ccf_score;type:numeric(12,4);comment:CCF评分"`
	CCFLevel     int     `gorm:"column:ccf_level;type:int;comment:CCF等级"`
}

// Contest 比赛
type Contest struct {
	ID           int64  `gorm:"column:id;primaryKey;autoIncrement:false;comment:比赛ID"`
	Name         string `gorm:"column:name;type:varchar(128);not null;comment:比赛名称"`
	Type         string `gorm:"column:type;type:varchar(32);index:idx_contest_year_type,priority:2;comment:比赛类型：NOI/NOIP提高/CSP入门..."`
	Year         int    `gorm:"column:year;type:int;index:idx_contest_year_type,priority:1;comment:年份"`
	FallSemester bool   `gorm:"column:fall_semester;type:boolean;comment:是否秋季学期"`
	FullScore    int    `gorm:"column:full_score;type:int;comment:满分"`
}

// School 学校
type School struct {
	ID       int64   `gorm:"column:id;primaryKey;autoIncrement:false;comment:学校ID"`
	Name     string  `gorm:"column:name;type:varchar(128);not null;comment:学校名称"`
	Province string  `gorm:"column:province;type:varchar(16);comment:省份"`
	City     string  `gorm:"column:city;type:varchar(32);comment:城市"`
	Score    float64 `gorm:"column:score;type:numeric(12,4);comment:学校评分"`
}

// Record 选手在某场比赛中的一条获奖记录
type Record struct {
	ID        int64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	OIerUID   int64    `gorm:"column:oier_uid;type:bigint;index:idx_record_oier;not null;comment:关联选手ID"`
	ContestID int64    `gorm:"column:contest_id;type:bigint;index:idx_record_contest_level,priority:1;not null;comment:关联比赛ID"`
	SchoolID  int64    `gorm:"column:school_id;type:bigint;index;comment:关联学校ID"`
	Score     *float64 `gorm:"column:score;type:numeric(10,2);comment:分数"`
	Rank      int      `gorm:"column:rank;type:int;comment:排名"`
	Province  string   `gorm:"column:province;type:varchar(16);index;comment:省份"`
	Level     string   `gorm:"column:level;type:varchar(16);index:idx_record_contest_level,priority:2;comment:奖项等级"`
}

// LuoguPrize 洛谷个人主页同步下来的线下奖项
type LuoguPrize struct {
	ID          uint64         `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	LuoguUID    int64          `gorm:"column:luogu_uid;type:bigint;index;not null;comment:洛谷用户ID"`
	ContestName string         `gorm:"column:contest_name;type:varchar(64);not null;comment:比赛名称（洛谷口径）"`
	PrizeLevel  string         `gorm:"column:prize_level;type:varchar(32);not null;comment:奖项"`
	Year        *int           `gorm:"column:year;type:int;comment:年份"`
	Score       *float64       `gorm:"column:score;type:numeric(10,2);comment:分数"`
	Rank        *int           `gorm:"column:rank;type:int;comment:排名"`
	Event       *string        `gorm:"column:event;type:varchar(128);comment:赛事说明"`
	IsNOISeries bool           `gorm:"column:is_noi_series;type:boolean;default:false;comment:是否 NOI 系列"`
	Raw         datatypes.JSON `gorm:"column:raw;type:jsonb;comment:洛谷原始数据"`
	CreatedAt   time.Time      `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;type:timestamp;default:now();comment:更新时间"`
}

func (OIer) TableName() string       { return "OIer" }
func (Contest) TableName() string    { return "Contest" }
func (School) TableName() string     { return "School" }
func (Record) TableName() string     { return "Record" }
func (LuoguPrize) TableName() string { return "LuoguPrizes" }

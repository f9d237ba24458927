package main

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"slices"
	"strconv"

	"OIerFinder/internal/config"
	"OIerFinder/internal/database"
	"OIerFinder/internal/stats"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	driver string
	dsn    string
	out    string
	top    int
)

var rootCmd = &cobra.Command{
	Use:   "calcstats",
	Short: "从 Record ⋈ Contest 重新计算基数统计文件",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVar(&driver, "driver", "sqlite", "数据库驱动：sqlite / postgres")
	rootCmd.Flags().StringVar(&dsn, "dsn", "./oier_data.db", "数据源（sqlite 为文件路径）")
	rootCmd.Flags().StringVar(&out, "out", "./filter_stats.json", "输出文件")
	rootCmd.Flags().IntVar(&top, "top", 20, "打印人数最多的前 N 个分桶，0 不打印")
}

func run(cmd *cobra.Command, _ []string) error {
	logger := logrus.New()
	conn, err := database.Open(config.DatabaseConfig{Driver: driver, DSN: dsn}, 0, false, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	table, err := stats.Compute(context.Background(), conn.Backend)
	if err != nil {
		return fmt.Errorf("计算统计失败: %w", err)
	}
	if err := table.Save(out); err != nil {
		return fmt.Errorf("写出统计文件失败: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"out":      out,
		"min_year": table.MinYear,
		"max_year": table.MaxYear,
		"years":    len(table.Stats),
	}).Info("统计文件已生成")

	if top > 0 {
		printTop(cmd, table, top)
	}
	return nil
}

type bucket struct {
	year                     int
	contestType, prov, level string
	count                    int
}

func printTop(cmd *cobra.Command, table *stats.Table, n int) {
	var buckets []bucket
	for year, byType := range table.Stats {
		for contestType, byProvince := range byType {
			for prov, byLevel := range byProvince {
				for level, count := range byLevel {
					buckets = append(buckets, bucket{year, contestType, prov, level, count})
				}
			}
		}
	}
	slices.SortFunc(buckets, func(a, b bucket) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return cmp.Compare(a.year, b.year)
	})

	tw := tablewriter.NewTable(cmd.OutOrStdout(), tablewriter.WithRenderer(renderer.NewMarkdown()))
	tw.Header([]string{"year", "contest_type", "province", "level", "oiers"})
	for _, b := range buckets[:min(n, len(buckets))] {
		tw.Append([]string{strconv.Itoa(b.year), b.contestType, b.prov, b.level, strconv.Itoa(b.count)})
	}
	tw.Render()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

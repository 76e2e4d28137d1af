/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/eslsoft/vocabook/internal/dataset"
	"github.com/eslsoft/vocabook/internal/entity"
	"github.com/eslsoft/vocabook/internal/usecase/validate"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "查看词汇书概况与编写进度",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dir, _ := cmd.Flags().GetString("dir")
		formatRaw, _ := cmd.Flags().GetString("format")

		format, err := validate.ParseFormat(formatRaw)
		if err != nil {
			return err
		}
		if format == validate.FormatCSV {
			return fmt.Errorf("status 不支持 csv 格式")
		}

		sess, err := openSession(ctx, dir)
		if err != nil {
			return err
		}
		defer sess.Close()
		return runStatus(ctx, sess, format, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().String("dir", "", "CSV 目录 (为空时使用配置的数据库)")
	statusCmd.Flags().StringP("format", "f", "text", "输出格式: text, json, yaml")
}

type statusReport struct {
	Target   string        `json:"target" yaml:"target"`
	Book     *entity.Book  `json:"book" yaml:"book"`
	Days     int           `json:"days" yaml:"days"`
	Stats    dataset.Stats `json:"stats" yaml:"stats"`
	Complete bool          `json:"complete" yaml:"complete"`
}

func runStatus(ctx context.Context, sess *session, format validate.Format, out io.Writer) error {
	ds, err := sess.load(ctx)
	if err != nil {
		return err
	}
	status := statusReport{
		Target:   sess.target,
		Book:     ds.Book,
		Days:     len(ds.Index().Days()),
		Stats:    ds.Stats(),
		Complete: len(ds.Words) > 0 && ds.Complete(),
	}

	switch format {
	case validate.FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	case validate.FormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(status); err != nil {
			return err
		}
		return enc.Close()
	}

	fmt.Fprintf(out, "数据源: %s\n", status.Target)
	if status.Book == nil {
		fmt.Fprintln(out, "词汇书: 未初始化")
	} else {
		b := status.Book
		fmt.Fprintf(out, "词汇书: %s (创建于 %s)\n", b.CodeName, b.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "规格: %d 天 × %d 词, 释义上限 %d, 例句上限 %d\n",
			b.MaxDays, b.MaxWordsPerDay, b.MaxSensesPerWord, b.MaxExamplesPerSense)
	}
	fmt.Fprintf(out, "已有天数: %d\n", status.Days)
	printStats(out, status.Stats)
	if status.Complete {
		fmt.Fprintln(out, "状态: 已完成")
	} else {
		fmt.Fprintf(out, "状态: 未完成 (剩余占位 %d)\n", status.Stats.Placeholders())
	}
	return nil
}

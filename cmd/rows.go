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
	"fmt"
	"io"

	entschema "entgo.io/ent/dialect/sql/schema"
	"github.com/eslsoft/vocabook/internal/adapter/csvstore"
	"github.com/eslsoft/vocabook/internal/entity"
	"github.com/eslsoft/vocabook/internal/infrastructure/database/schema"
	"github.com/eslsoft/vocabook/pkg/rowfilter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type rowsOptions struct {
	Table string
	Where string
	Sort  string
}

var rowsCmd = &cobra.Command{
	Use:   "rows <table>",
	Short: "按条件查询单张表的行",
	Long: `输出 books、words、definitions 或 examples 表的行 (CSV)。
--where 接受 CEL 表达式，例如 'day_no == 3 && word.startsWith("ab")'；
--sort 接受 "-word_id" 或 "day_no asc, word_no desc" 形式的排序。`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dir, _ := cmd.Flags().GetString("dir")
		outputPath, _ := cmd.Flags().GetString("output")
		opts := rowsOptions{Table: args[0]}
		opts.Where, _ = cmd.Flags().GetString("where")
		opts.Sort, _ = cmd.Flags().GetString("sort")

		sess, err := openSession(ctx, dir)
		if err != nil {
			return err
		}
		defer sess.Close()

		out, closeOut, err := openOutput(cmd, outputPath)
		if err != nil {
			return err
		}
		runErr := runRows(ctx, sess, opts, out)
		if err := closeOut(); err != nil && runErr == nil {
			runErr = fmt.Errorf("关闭输出文件失败: %w", err)
		}
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(rowsCmd)

	rowsCmd.Flags().String("dir", "", "CSV 目录 (为空时使用配置的数据库)")
	rowsCmd.Flags().String("where", "", "CEL 过滤表达式")
	rowsCmd.Flags().String("sort", "", "排序，例如 -word_id 或 \"day_no asc, word_no desc\"")
	rowsCmd.Flags().StringP("output", "o", "", "输出文件 (默认标准输出)")
}

func runRows(ctx context.Context, sess *session, opts rowsOptions, out io.Writer) error {
	tbl, ok := schema.Lookup(opts.Table)
	if !ok {
		return fmt.Errorf("%w: %s", entity.ErrUnknownTable, opts.Table)
	}
	fields := lo.Map(tbl.Columns, func(col *entschema.Column, _ int) rowfilter.Field {
		kind := rowfilter.KindString
		switch {
		case schema.IsInteger(col):
			kind = rowfilter.KindInt
		case schema.IsTime(col):
			kind = rowfilter.KindTimestamp
		}
		return rowfilter.Field{Name: col.Name, Kind: kind}
	})

	var filter *rowfilter.Filter
	if opts.Where != "" {
		f, err := rowfilter.Compile(opts.Where, fields)
		if err != nil {
			return fmt.Errorf("无效的 --where 表达式: %w", err)
		}
		filter = f
	}
	order, err := rowfilter.ParseOrder(opts.Sort, fields)
	if err != nil {
		return fmt.Errorf("无效的 --sort: %w", err)
	}

	ds, err := sess.load(ctx)
	if err != nil {
		return err
	}
	rows, err := ds.Rows(tbl.Name)
	if err != nil {
		return err
	}
	if filter != nil {
		if rows, err = rowfilter.Apply(filter, rows); err != nil {
			return fmt.Errorf("执行 --where 失败: %w", err)
		}
	}
	rowfilter.Sort(rows, order)

	if err := csvstore.WriteTable(out, schema.ColumnNames(tbl), rows); err != nil {
		return fmt.Errorf("输出查询结果失败: %w", err)
	}
	sess.logger.WithField("table", tbl.Name).WithField("rows", len(rows)).Debug("rows written")
	return nil
}

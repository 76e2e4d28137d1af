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

	"github.com/eslsoft/vocabook/internal/dataset"
	"github.com/eslsoft/vocabook/internal/entity"
	"github.com/spf13/cobra"
)

var populateCmd = &cobra.Command{
	Use:   "populate",
	Short: "按词汇书元数据生成占位单词、释义与例句",
	Long: `为每个 (day, word_no) 生成占位单词 TempWord_<id>，
以及对应的 sense 0 释义 TempDefinition_<id> 和 example 0 例句 TempExample_<id>。
已有单词时拒绝执行，需要先删除并重新创建数据。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dir, _ := cmd.Flags().GetString("dir")
		days, _ := cmd.Flags().GetInt64("days")
		items, _ := cmd.Flags().GetInt64("items")

		sess, err := openSession(ctx, dir)
		if err != nil {
			return err
		}
		defer sess.Close()
		return runPopulate(ctx, sess, days, items, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(populateCmd)

	populateCmd.Flags().String("dir", "", "CSV 目录 (为空时使用配置的数据库)")
	populateCmd.Flags().Int64("days", 0, "天数，默认取词汇书的 max_days")
	populateCmd.Flags().Int64("items", 0, "每天单词数，默认取词汇书的 max_words_per_day")
}

func runPopulate(ctx context.Context, sess *session, days, items int64, out io.Writer) error {
	ds, err := sess.load(ctx)
	if err != nil {
		return err
	}
	if ds.Book == nil {
		return fmt.Errorf("%w: 请先执行 init", entity.ErrBookMissing)
	}
	if days == 0 {
		days = ds.Book.MaxDays
	}
	if items == 0 {
		items = ds.Book.MaxWordsPerDay
	}
	if err := ds.PopulateSkeleton(days, items); err != nil {
		return fmt.Errorf("生成占位数据失败: %w", err)
	}
	if err := sess.save(ctx, ds); err != nil {
		return err
	}
	sess.logger.WithField("words", len(ds.Words)).WithField("target", sess.target).Info("skeleton populated")
	fmt.Fprintf(out, "填充完成: %s\n", sess.target)
	printStats(out, ds.Stats())
	return nil
}

func printStats(out io.Writer, s dataset.Stats) {
	fmt.Fprintf(out, "单词 %d (占位 %d)  释义 %d (占位 %d)  例句 %d (占位 %d)\n",
		s.Words, s.PlaceholderWords, s.Definitions, s.PlaceholderDefs, s.Examples, s.PlaceholderExamples)
}

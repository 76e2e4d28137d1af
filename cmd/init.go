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
	"strings"

	"github.com/eslsoft/vocabook/internal/entity"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type initOptions struct {
	Name     string
	Days     int64
	Items    int64
	Senses   int64
	Examples int64
	Populate bool
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "创建数据表并写入词汇书元数据",
	Long: `创建 books/words/definitions/examples 四张表 (或 CSV 文件) 并写入唯一的词汇书记录。
使用 --populate 可以同时生成占位单词、释义与例句。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dir, _ := cmd.Flags().GetString("dir")

		sess, err := openSession(ctx, dir)
		if err != nil {
			return err
		}
		defer sess.Close()

		opts := initOptions{
			Name:     viper.GetString("init.name"),
			Days:     viper.GetInt64("init.days"),
			Items:    viper.GetInt64("init.items"),
			Senses:   sess.cfg.Book.MaxSensesPerWord,
			Examples: sess.cfg.Book.MaxExamplesPerSense,
			Populate: viper.GetBool("init.populate"),
		}
		return runInit(ctx, sess, opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().String("dir", "", "CSV 目录 (为空时使用配置的数据库)")
	initCmd.Flags().String("name", "", "词汇书代号 (code_name)")
	initCmd.Flags().Int64("days", 0, "天数 (max_days)")
	initCmd.Flags().Int64("items", 0, "每天的单词数 (max_words_per_day)")
	initCmd.Flags().Int64("senses", 10, "每个单词的最大释义数 (max_senses_per_word)")
	initCmd.Flags().Int64("examples", 10, "每个释义的最大例句数 (max_examples_per_sense)")
	initCmd.Flags().Bool("populate", false, "同时生成占位数据")

	bindFlagToViper("init.name", initCmd.Flags().Lookup("name"))
	bindFlagToViper("init.days", initCmd.Flags().Lookup("days"))
	bindFlagToViper("init.items", initCmd.Flags().Lookup("items"))
	bindFlagToViper("book.max_senses_per_word", initCmd.Flags().Lookup("senses"))
	bindFlagToViper("book.max_examples_per_sense", initCmd.Flags().Lookup("examples"))
	bindFlagToViper("init.populate", initCmd.Flags().Lookup("populate"))
}

func runInit(ctx context.Context, sess *session, opts initOptions, out io.Writer) error {
	opts.Name = strings.TrimSpace(opts.Name)
	if opts.Name == "" {
		return fmt.Errorf("请通过 --name 指定词汇书代号")
	}
	shape := entity.Shape{MaxItemsPerDay: opts.Items, MaxSenses: opts.Senses, MaxExamples: opts.Examples}
	if err := entity.CheckDimensions(opts.Days, shape); err != nil {
		return err
	}

	ds, err := sess.loadOrEmpty(ctx)
	if err != nil {
		return err
	}
	if ds.Book != nil && len(ds.Words) > 0 {
		old := ds.Book.Shape()
		if old.MaxItemsPerDay != opts.Items || old.MaxSenses != opts.Senses || old.MaxExamples != opts.Examples {
			return fmt.Errorf("%w: 已有 %d 个单词，不能修改每天单词数、释义数或例句数", entity.ErrShapeMismatch, len(ds.Words))
		}
	}

	book := ds.UpsertBook(entity.Book{
		CodeName:            opts.Name,
		MaxDays:             opts.Days,
		MaxWordsPerDay:      opts.Items,
		MaxSensesPerWord:    opts.Senses,
		MaxExamplesPerSense: opts.Examples,
	})

	if opts.Populate {
		if err := ds.PopulateSkeleton(opts.Days, opts.Items); err != nil {
			return fmt.Errorf("生成占位数据失败: %w", err)
		}
	}

	if sess.sql != nil && !opts.Populate {
		if err := sess.sql.UpsertBook(ctx, *book); err != nil {
			return fmt.Errorf("写入词汇书元数据失败: %w", err)
		}
	} else if err := sess.save(ctx, ds); err != nil {
		return err
	}

	sess.logger.WithField("book", book.CodeName).WithField("target", sess.target).Info("book initialized")
	fmt.Fprintf(out, "初始化完成: %s (%d 天 × %d 词, 释义上限 %d, 例句上限 %d)\n",
		book.CodeName, book.MaxDays, book.MaxWordsPerDay, book.MaxSensesPerWord, book.MaxExamplesPerSense)
	if opts.Populate {
		printStats(out, ds.Stats())
	}
	return nil
}

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

	"github.com/eslsoft/vocabook/internal/usecase/dayfile"
	"github.com/spf13/cobra"
)

var dayCmd = &cobra.Command{
	Use:   "day",
	Short: "按天编辑单词",
}

var dayApplyCmd = &cobra.Command{
	Use:   "apply <day> <file>",
	Short: "用单词列表或 word_id,word CSV 替换某一天的单词",
	Long: `读取每行一个单词的列表，或两列 CSV (word_id,word 或 day_no,word)，
替换指定天的单词文本 (<file> 为 - 时读取标准输入)。若 CSV 第一列全部是该天的 word_id 则按 ID 匹配，否则按 word_no 顺序匹配。`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		day, err := parseDay(args[0])
		if err != nil {
			return err
		}
		in, closeIn, err := openInput(cmd, args[1])
		if err != nil {
			return err
		}
		defer closeIn()

		dir, _ := cmd.Flags().GetString("dir")
		sess, err := openSession(ctx, dir)
		if err != nil {
			return err
		}
		defer sess.Close()
		return runDayApply(ctx, sess, day, in, cmd.OutOrStdout())
	},
}

var dayTemplateCmd = &cobra.Command{
	Use:   "template <day>",
	Short: "输出某一天的 word_id,word 模板",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		day, err := parseDay(args[0])
		if err != nil {
			return err
		}
		dir, _ := cmd.Flags().GetString("dir")
		outputPath, _ := cmd.Flags().GetString("output")

		sess, err := openSession(ctx, dir)
		if err != nil {
			return err
		}
		defer sess.Close()

		out, closeOut, err := openOutput(cmd, outputPath)
		if err != nil {
			return err
		}
		runErr := runDayTemplate(ctx, sess, day, out)
		if err := closeOut(); err != nil && runErr == nil {
			runErr = fmt.Errorf("关闭输出文件失败: %w", err)
		}
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(dayCmd)
	dayCmd.AddCommand(dayApplyCmd, dayTemplateCmd)

	dayCmd.PersistentFlags().String("dir", "", "CSV 目录 (为空时使用配置的数据库)")
	dayTemplateCmd.Flags().StringP("output", "o", "", "模板输出文件 (默认标准输出)")
}

func runDayApply(ctx context.Context, sess *session, day int64, r io.Reader, out io.Writer) error {
	file, err := dayfile.Parse(r)
	if err != nil {
		return err
	}
	ds, err := sess.load(ctx)
	if err != nil {
		return err
	}
	res, err := dayfile.Apply(ds, day, file)
	if err != nil {
		return err
	}
	for _, warning := range res.Warnings {
		sess.logger.WithField("day", day).Warn(warning)
	}
	if err := sess.save(ctx, ds); err != nil {
		return err
	}
	fmt.Fprintf(out, "第 %d 天已更新 %d 个单词 (匹配方式: %s)\n", res.Day, res.Updated, res.Mode)
	return nil
}

func runDayTemplate(ctx context.Context, sess *session, day int64, out io.Writer) error {
	ds, err := sess.load(ctx)
	if err != nil {
		return err
	}
	n, err := dayfile.Template(ds, day, out)
	if err != nil {
		return err
	}
	sess.logger.WithField("day", day).WithField("words", n).Debug("day template written")
	return nil
}

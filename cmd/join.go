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

	"github.com/eslsoft/vocabook/internal/adapter/csvstore"
	"github.com/eslsoft/vocabook/internal/dataset"
	"github.com/spf13/cobra"
)

var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "输出单词、释义、例句的扁平化 CSV 视图",
	Long: `按 day_no、word_no、sense_no、example_no 顺序输出连接后的行。
--mode word 只输出单词列，definition 输出到释义列，example (默认) 输出全部列。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dir, _ := cmd.Flags().GetString("dir")
		modeRaw, _ := cmd.Flags().GetString("mode")
		outputPath, _ := cmd.Flags().GetString("output")

		mode, err := dataset.ParseJoinMode(modeRaw)
		if err != nil {
			return err
		}

		sess, err := openSession(ctx, dir)
		if err != nil {
			return err
		}
		defer sess.Close()

		out, closeOut, err := openOutput(cmd, outputPath)
		if err != nil {
			return err
		}
		runErr := runJoin(ctx, sess, mode, out)
		if err := closeOut(); err != nil && runErr == nil {
			runErr = fmt.Errorf("关闭输出文件失败: %w", err)
		}
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(joinCmd)

	joinCmd.Flags().String("dir", "", "CSV 目录 (为空时使用配置的数据库)")
	joinCmd.Flags().String("mode", "example", "连接深度: word, definition, example")
	joinCmd.Flags().StringP("output", "o", "", "输出文件 (默认标准输出)")
}

func runJoin(ctx context.Context, sess *session, mode dataset.JoinMode, out io.Writer) error {
	ds, err := sess.load(ctx)
	if err != nil {
		return err
	}
	rows := ds.Join(mode)
	if err := csvstore.WriteTable(out, mode.Columns(), rows); err != nil {
		return fmt.Errorf("输出连接视图失败: %w", err)
	}
	sess.logger.WithField("mode", mode).WithField("rows", len(rows)).Debug("join written")
	return nil
}

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

	"github.com/eslsoft/vocabook/internal/entity"
	"github.com/eslsoft/vocabook/internal/usecase/validate"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "从 CSV 目录导入词汇书并整体替换数据库内容",
	Long: `读取 CSV 目录中的四个文件，在一个事务内清空并重建数据库中的全部数据。
使用 --strict 时先执行完整性校验，有错误则不写入。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		strict, _ := cmd.Flags().GetBool("strict")

		dst, err := openDatabaseSession(ctx)
		if err != nil {
			return err
		}
		defer dst.Close()

		src := newCSVSession(dataDir(cmd, dst), dst.cfg, dst.logger)
		return runImport(ctx, src, dst, strict, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().String("dir", "", "CSV 输入目录，默认取配置项 book.data_dir")
	importCmd.Flags().Bool("strict", false, "校验失败时拒绝导入")
}

func runImport(ctx context.Context, src, dst *session, strict bool, out io.Writer) error {
	if !strict {
		return runTransfer(ctx, src, dst, out)
	}
	ds, err := src.load(ctx)
	if err != nil {
		return err
	}
	report := validate.Run(ds)
	if report.HasErrors() {
		if err := report.Write(out, validate.FormatText); err != nil {
			return err
		}
		return fmt.Errorf("%w: %d 个错误，未导入", entity.ErrValidationFailed, report.ErrorCount())
	}
	if err := dst.save(ctx, ds); err != nil {
		return err
	}
	dst.logger.WithField("from", src.target).WithField("to", dst.target).Info("dataset imported")
	fmt.Fprintf(out, "已导入 %s (警告 %d)\n", dst.target, report.WarningCount())
	printStats(out, ds.Stats())
	return nil
}

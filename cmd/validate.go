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

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "校验词汇书的完整性",
	Long: `检查词汇书元数据、主键唯一性、ID 推导关系、序号范围、外键引用、
内容完整性以及残留的占位文本。存在错误时以非零状态退出，警告不影响退出状态。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dir, _ := cmd.Flags().GetString("dir")
		formatRaw, _ := cmd.Flags().GetString("format")
		outputPath, _ := cmd.Flags().GetString("output")

		format, err := validate.ParseFormat(formatRaw)
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
		runErr := runValidate(ctx, sess, format, out)
		if err := closeOut(); err != nil && runErr == nil {
			runErr = fmt.Errorf("关闭输出文件失败: %w", err)
		}
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().String("dir", "", "CSV 目录 (为空时使用配置的数据库)")
	validateCmd.Flags().StringP("format", "f", "text", "报告格式: text, json, yaml, csv")
	validateCmd.Flags().StringP("output", "o", "", "报告输出文件 (默认标准输出)")
}

func runValidate(ctx context.Context, sess *session, format validate.Format, out io.Writer) error {
	ds, err := sess.load(ctx)
	if err != nil {
		return err
	}
	report := validate.Run(ds)
	if err := report.Write(out, format); err != nil {
		return fmt.Errorf("输出校验报告失败: %w", err)
	}
	sess.logger.WithField("errors", report.ErrorCount()).
		WithField("warnings", report.WarningCount()).
		Debug("validation finished")
	if report.HasErrors() {
		return fmt.Errorf("%w: %d 个错误", entity.ErrValidationFailed, report.ErrorCount())
	}
	return nil
}

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
	"compress/gzip"
	"fmt"
	"sort"
	"strings"

	"github.com/eslsoft/vocabook/internal/usecase/backup"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	restoreInputKey   = "backup.import.input"
	restoreGzipKey    = "backup.import.gzip"
	restoreTablesKey  = "backup.import.tables"
	restoreReplaceKey = "backup.import.replace"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "从 NDJSON 备份文件恢复数据库内容",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()

		inputPath := viper.GetString(restoreInputKey)
		gzipEnabled := viper.GetBool(restoreGzipKey)
		tableList := tablesFromConfig(restoreTablesKey)
		replace := viper.GetBool(restoreReplaceKey)

		if inputPath == "" {
			return fmt.Errorf("请通过 --input 指定备份文件或使用 - 表示标准输入")
		}
		if !gzipEnabled && inputPath != "-" && strings.HasSuffix(strings.ToLower(inputPath), ".gz") {
			gzipEnabled = true
		}

		sess, err := openDatabaseSession(ctx)
		if err != nil {
			return err
		}
		defer sess.Close()

		in, closeIn, err := openInput(cmd, inputPath)
		if err != nil {
			return err
		}
		closers := []func() error{closeIn}
		if gzipEnabled {
			gzr, gzErr := gzip.NewReader(in)
			if gzErr != nil {
				_ = closeIn()
				return fmt.Errorf("读取 gzip 备份失败: %w", gzErr)
			}
			in = gzr
			closers = append([]func() error{gzr.Close}, closers...)
		}
		defer func() {
			for _, closeFn := range closers {
				if cerr := closeFn(); cerr != nil && err == nil {
					err = cerr
				}
			}
		}()

		importOpts := []backup.ImportOption{backup.WithReplace(replace)}
		if len(tableList) > 0 {
			importOpts = append(importOpts, backup.WithImportTables(tableList))
		}

		summary, err := sess.container.Backup.Import(ctx, in, importOpts...)
		if err != nil {
			return fmt.Errorf("恢复备份失败: %w", err)
		}

		tables := lo.Keys(summary.Rows)
		sort.Strings(tables)
		for _, name := range tables {
			sess.logger.WithField("table", name).WithField("rows", summary.Rows[name]).Info("table restored")
		}

		if inputPath == "-" {
			cmd.Println("恢复完成: 数据来源于标准输入")
		} else {
			cmd.Printf("恢复完成: %s\n", inputPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)

	restoreCmd.Flags().StringP("input", "i", "", "备份文件路径，使用 - 表示标准输入")
	restoreCmd.Flags().Bool("gzip", false, "输入为 gzip 压缩格式")
	restoreCmd.Flags().StringSlice("tables", nil, "仅恢复指定表，逗号分隔或重复指定")
	restoreCmd.Flags().Bool("replace", false, "恢复前清空所选表")

	bindRestoreConfig()
}

func bindRestoreConfig() {
	bindFlagToViper(restoreInputKey, restoreCmd.Flags().Lookup("input"))
	bindFlagToViper(restoreGzipKey, restoreCmd.Flags().Lookup("gzip"))
	bindFlagToViper(restoreTablesKey, restoreCmd.Flags().Lookup("tables"))
	bindFlagToViper(restoreReplaceKey, restoreCmd.Flags().Lookup("replace"))
}

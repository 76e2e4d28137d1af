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
	"io"
	"strings"
	"time"

	"github.com/eslsoft/vocabook/internal/usecase/backup"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	backupOutputKey = "backup.export.output"
	backupGzipKey   = "backup.export.gzip"
	backupTablesKey = "backup.export.tables"
	backupBatchKey  = "backup.export.batch_size"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "导出数据库内容为 NDJSON 备份",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()

		sess, err := openDatabaseSession(ctx)
		if err != nil {
			return err
		}
		defer sess.Close()

		outputPath := viper.GetString(backupOutputKey)
		gzipEnabled := viper.GetBool(backupGzipKey)
		tableList := tablesFromConfig(backupTablesKey)
		batchSize := viper.GetInt(backupBatchKey)

		if outputPath == "" {
			outputPath = defaultBackupFilename(gzipEnabled)
		}
		if !gzipEnabled && outputPath != "-" && strings.HasSuffix(strings.ToLower(outputPath), ".gz") {
			gzipEnabled = true
		}

		service := sess.container.Backup
		if batchSize > 0 {
			if service, err = backup.NewService(sess.container.DB, backup.WithBatchSize(batchSize)); err != nil {
				return fmt.Errorf("创建备份服务失败: %w", err)
			}
		}

		out, closeOut, err := openOutput(cmd, outputPath)
		if err != nil {
			return err
		}
		closers := []func() error{closeOut}
		if gzipEnabled {
			gz := gzip.NewWriter(out)
			out = gz
			closers = append([]func() error{gz.Close}, closers...)
		}
		defer func() {
			for _, closeFn := range closers {
				if cerr := closeFn(); cerr != nil && err == nil {
					err = fmt.Errorf("关闭备份输出失败: %w", cerr)
				}
			}
		}()

		progress := newCLIProgress(cmd.ErrOrStderr())
		exportOpts := []backup.ExportOption{backup.WithProgressReporter(progress)}
		if len(tableList) > 0 {
			exportOpts = append(exportOpts, backup.WithTables(tableList))
		}

		if err := service.Export(ctx, out, exportOpts...); err != nil {
			return fmt.Errorf("导出备份失败: %w", err)
		}

		if outputPath == "-" {
			cmd.PrintErrln("备份完成: 输出到标准输出")
		} else {
			cmd.Printf("备份完成: %s\n", outputPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)

	backupCmd.Flags().StringP("output", "o", "", "备份输出文件路径，使用 - 表示标准输出")
	backupCmd.Flags().Bool("gzip", false, "使用 gzip 压缩输出")
	backupCmd.Flags().StringSlice("tables", nil, "仅导出指定表，逗号分隔或重复指定")
	backupCmd.Flags().Int("batch-size", 0, "导出批处理大小 (默认 512)")

	bindBackupConfig()
}

func defaultBackupFilename(gzipEnabled bool) string {
	ts := time.Now().UTC().Format("20060102-150405")
	filename := fmt.Sprintf("vocabook-backup-%s.jsonl", ts)
	if gzipEnabled {
		filename += ".gz"
	}
	return filename
}

func bindBackupConfig() {
	bindFlagToViper(backupOutputKey, backupCmd.Flags().Lookup("output"))
	bindFlagToViper(backupGzipKey, backupCmd.Flags().Lookup("gzip"))
	bindFlagToViper(backupTablesKey, backupCmd.Flags().Lookup("tables"))
	bindFlagToViper(backupBatchKey, backupCmd.Flags().Lookup("batch-size"))
}

// cliProgress prints per-table backup progress, roughly every 5% of a table.
type cliProgress struct {
	out    io.Writer
	tables map[string]*tableProgress
}

type tableProgress struct {
	total, done, printed, step int
}

func newCLIProgress(out io.Writer) *cliProgress {
	return &cliProgress{out: out, tables: make(map[string]*tableProgress)}
}

func (p *cliProgress) StartTable(table string, total int) {
	total = max(total, 0)
	p.tables[table] = &tableProgress{total: total, step: progressStep(total)}
	fmt.Fprintf(p.out, "备份表 %s: 共 %d 行\n", table, total)
}

func (p *cliProgress) Increment(table string, delta int) {
	t, ok := p.tables[table]
	if !ok || delta <= 0 {
		return
	}
	t.done += delta
	if t.printed == 0 || t.done == t.total || t.done-t.printed >= t.step {
		p.print(table, t)
	}
}

func (p *cliProgress) FinishTable(table string) {
	t, ok := p.tables[table]
	if !ok {
		return
	}
	if t.done != t.printed {
		p.print(table, t)
	}
	fmt.Fprintf(p.out, "%s 备份完成: %d 行\n", table, t.done)
	delete(p.tables, table)
}

func (p *cliProgress) print(table string, t *tableProgress) {
	t.printed = t.done
	if t.total > 0 {
		fmt.Fprintf(p.out, "  %s %d/%d\n", table, t.done, t.total)
		return
	}
	fmt.Fprintf(p.out, "  %s 已处理 %d 行\n", table, t.done)
}

func progressStep(total int) int {
	if total <= 0 {
		return 1000
	}
	return min(max(total/20, 1), 1000)
}

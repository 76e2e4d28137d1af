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

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "将数据库中的词汇书导出为 CSV 目录",
	Long: `把 books/words/definitions/examples 四张表按主键顺序写入 CSV 目录
(book_meta.csv, words.csv, definitions.csv, examples.csv)。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		src, err := openDatabaseSession(ctx)
		if err != nil {
			return err
		}
		defer src.Close()

		dst := newCSVSession(dataDir(cmd, src), src.cfg, src.logger)
		return runTransfer(ctx, src, dst, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("dir", "", "CSV 输出目录，默认取配置项 book.data_dir")
}

// dataDir returns --dir, falling back to the configured data directory.
func dataDir(cmd *cobra.Command, sess *session) string {
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		return dir
	}
	return sess.cfg.Book.DataDir
}

// runTransfer copies the whole dataset from src to dst, replacing dst's content.
func runTransfer(ctx context.Context, src, dst *session, out io.Writer) error {
	ds, err := src.load(ctx)
	if err != nil {
		return err
	}
	if err := dst.save(ctx, ds); err != nil {
		return err
	}
	src.logger.WithField("from", src.target).WithField("to", dst.target).Info("dataset copied")
	fmt.Fprintf(out, "已写入 %s\n", dst.target)
	printStats(out, ds.Stats())
	return nil
}

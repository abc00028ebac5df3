package cli

import (
	"fmt"
	"image/png"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmchale/phash-fut/luma"
)

// Grids with more than summarizeThreshold samples print only edgeItems rows
// and columns at each end.
const (
	summarizeThreshold = 1000
	edgeItems          = 3
)

func newFilterCmd(gf *globalFlags) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "filter IMAGE",
		Short: "Print an image's luminance grid and its mean-filtered grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, gf, 0)
			if err != nil {
				return err
			}
			src, err := rt.load(args[0])
			if err != nil {
				return err
			}
			filtered, err := rt.hasher.MeanFilter(cmd.Context(), src)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("luminance %dx%d", src.Width(), src.Height())))
			if err := writeMatrix(w, src); err != nil {
				return err
			}
			fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("mean filter %dx%d", rt.hasher.KernelSize(), rt.hasher.KernelSize())))
			if err := writeMatrix(w, filtered); err != nil {
				return err
			}

			if out != "" {
				if err := writePNG(out, filtered); err != nil {
					return err
				}
				rt.log.WithField("path", out).Info("wrote filtered image")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the filtered grid as a 16-bit greyscale PNG")
	return cmd
}

func writePNG(path string, m *luma.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, m); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// writeMatrix prints m the way numpy prints a 2D float array, eliding the
// middle of large grids with "...".
func writeMatrix(w io.Writer, m *luma.Image) error {
	if m.Empty() {
		_, err := fmt.Fprintln(w, "[]")
		return err
	}
	summarize := m.Width()*m.Height() > summarizeThreshold
	rows := shownIndices(m.Height(), summarize)
	cols := shownIndices(m.Width(), summarize)

	width := 0
	for _, y := range rows {
		for _, x := range cols {
			if y >= 0 && x >= 0 {
				width = max(width, len(formatValue(m.Value(x, y))))
			}
		}
	}

	var sb strings.Builder
	sb.WriteByte('[')
	for i, y := range rows {
		if i > 0 {
			sb.WriteString("\n ")
		}
		if y < 0 {
			sb.WriteString("...")
			continue
		}
		sb.WriteByte('[')
		for j, x := range cols {
			if j > 0 {
				sb.WriteByte(' ')
			}
			if x < 0 {
				sb.WriteString("...")
				continue
			}
			fmt.Fprintf(&sb, "%*s", width, formatValue(m.Value(x, y)))
		}
		sb.WriteByte(']')
	}
	sb.WriteString("]\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// shownIndices lists the indices to print; -1 marks an ellipsis.
func shownIndices(n int, summarize bool) []int {
	if !summarize || n <= 2*edgeItems {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	idx := make([]int, 0, 2*edgeItems+1)
	for i := 0; i < edgeItems; i++ {
		idx = append(idx, i)
	}
	idx = append(idx, -1)
	for i := n - edgeItems; i < n; i++ {
		idx = append(idx, i)
	}
	return idx
}

// formatValue prints whole numbers with a trailing dot, like numpy.
func formatValue(v float32) string {
	s := strconv.FormatFloat(float64(v), 'f', -1, 32)
	if !strings.ContainsAny(s, ".NI") {
		s += "."
	}
	return s
}

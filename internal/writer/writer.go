// Package writer implements the assembly listing output of disassembled programs.
package writer

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/retroenv/chip8vm/internal/program"
)

const dataBytesPerLine = 16

type lineWriterFunc func(line string, byteCount int) error

// Writer implements the listing writing functionality.
type Writer struct {
	app     *program.Program
	options Options
	writer  io.Writer

	label   func(a ...any) string
	comment func(a ...any) string
}

// Options of the writer.
type Options struct {
	HexComments    bool // output the instruction bytes as comment
	OffsetComments bool // output the address as comment
	ZeroBytes      bool // output trailing zero bytes
}

// New creates a new writer. Labels and comments are colored unless
// color.NoColor is set.
func New(app *program.Program, writer io.Writer, options Options) *Writer {
	return &Writer{
		app:     app,
		options: options,
		writer:  writer,
		label:   color.New(color.FgYellow).SprintFunc(),
		comment: color.New(color.FgHiBlack).SprintFunc(),
	}
}

// Write writes the header and all offsets of the program.
func (w Writer) Write() error {
	if err := w.writeHeader(); err != nil {
		return err
	}

	endIndex := len(w.app.Offsets)
	if !w.options.ZeroBytes {
		endIndex = w.app.LastNonZeroIndex()
	}
	return w.ProcessOffsets(endIndex)
}

func (w Writer) writeHeader() error {
	lines := []string{
		fmt.Sprintf("; CHIP-8 program of %d bytes", len(w.app.Offsets)),
		fmt.Sprintf("; CRC32 checksum: %08x", w.app.Checksum),
		fmt.Sprintf("; Code base address: $%04x", w.app.Start),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w.writer, w.comment(line)); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	if _, err := fmt.Fprintf(w.writer, "\n.org $%04X\n\n", w.app.Start); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	return nil
}

// ProcessOffsets writes all code offsets, labels and their comments up to the given index.
func (w Writer) ProcessOffsets(endIndex int) error {
	var previousLineWasCode bool

	for i := 0; i < endIndex; i++ {
		offset := w.app.Offsets[i]

		if err := w.writeLabel(i, offset); err != nil {
			return err
		}

		// print an empty line in case of data after code and vice versa
		isCode := offset.IsType(program.CodeOffset)
		if i > 0 && offset.Label == "" && isCode != previousLineWasCode {
			if _, err := fmt.Fprintln(w.writer); err != nil {
				return fmt.Errorf("writing line: %w", err)
			}
		}
		previousLineWasCode = isCode

		if isCode {
			if err := w.writeCodeLine(offset); err != nil {
				return err
			}
			i += len(offset.Data) - 1
			continue
		}

		written, err := w.bundleDataWrites(i, endIndex)
		if err != nil {
			return err
		}
		i += max(written, 1) - 1
	}
	return nil
}

// BundleDataWrites bundles writes of data bytes to print dataBytesPerLine bytes per line.
func (w Writer) BundleDataWrites(data []byte, lineWriter lineWriterFunc) error {
	remaining := len(data)
	for i := 0; remaining > 0; {
		toWrite := min(remaining, dataBytesPerLine)

		buf := &strings.Builder{}
		buf.WriteString(".byte ")
		for j := range toWrite {
			if _, err := fmt.Fprintf(buf, "$%02x, ", data[i+j]); err != nil {
				return fmt.Errorf("writing data byte: %w", err)
			}
		}

		line := strings.TrimRight(buf.String(), ", ")

		if lineWriter != nil {
			if err := lineWriter(line, toWrite); err != nil {
				return fmt.Errorf("writing data line using custom writer: %w", err)
			}
		} else {
			if _, err := fmt.Fprintf(w.writer, "  %s\n", line); err != nil {
				return fmt.Errorf("writing data line: %w", err)
			}
		}

		i += toWrite
		remaining -= toWrite
	}

	return nil
}

func (w Writer) writeLabel(index int, offset program.Offset) error {
	if offset.Label == "" {
		return nil
	}

	if index > 0 {
		if _, err := fmt.Fprintln(w.writer); err != nil {
			return fmt.Errorf("writing line: %w", err)
		}
	}

	if _, err := fmt.Fprintf(w.writer, "%s\n", w.label(offset.Label+":")); err != nil {
		return fmt.Errorf("writing label: %w", err)
	}
	return nil
}

func (w Writer) writeCodeLine(offset program.Offset) error {
	comment, err := w.codeComment(offset)
	if err != nil {
		return err
	}

	if comment == "" {
		_, err = fmt.Fprintf(w.writer, "  %s\n", offset.Code)
	} else {
		_, err = fmt.Fprintf(w.writer, "  %-30s %s\n", offset.Code, w.comment("; "+comment))
	}
	if err != nil {
		return fmt.Errorf("writing line: %w", err)
	}
	return nil
}

func (w Writer) codeComment(offset program.Offset) (string, error) {
	var parts []string
	if w.options.OffsetComments {
		parts = append(parts, fmt.Sprintf("$%04X", offset.Address))
	}
	if w.options.HexComments {
		hex, err := offset.HexCodeComment()
		if err != nil {
			return "", fmt.Errorf("creating hex comment: %w", err)
		}
		parts = append(parts, hex)
	}
	if offset.Comment != "" {
		parts = append(parts, offset.Comment)
	}
	return strings.Join(parts, "  "), nil
}

// bundleDataWrites writes the data bytes following startIndex until the next
// code offset or label and returns the number of written bytes.
func (w Writer) bundleDataWrites(startIndex, endIndex int) (int, error) {
	data := w.dataRun(startIndex, endIndex)

	currentIndex := startIndex
	lineWriter := func(line string, byteCount int) error {
		offset := w.app.Offsets[currentIndex]

		var parts []string
		if w.options.OffsetComments {
			parts = append(parts, fmt.Sprintf("$%04X", offset.Address))
		}
		if offset.Comment != "" {
			parts = append(parts, offset.Comment)
		}

		var err error
		if len(parts) == 0 {
			_, err = fmt.Fprintf(w.writer, "  %s\n", line)
		} else {
			_, err = fmt.Fprintf(w.writer, "  %-30s %s\n", line, w.comment("; "+strings.Join(parts, "  ")))
		}
		if err != nil {
			return fmt.Errorf("writing data line: %w", err)
		}

		currentIndex += byteCount
		return nil
	}

	if err := w.BundleDataWrites(data, lineWriter); err != nil {
		return 0, fmt.Errorf("writing program data: %w", err)
	}
	return len(data), nil
}

func (w Writer) dataRun(startIndex, endIndex int) []byte {
	var data []byte
	for i := startIndex; i < endIndex; i++ {
		offset := w.app.Offsets[i]
		if i > startIndex && (offset.Label != "" || offset.Comment != "") {
			break
		}
		if offset.IsType(program.CodeOffset) {
			break
		}
		data = append(data, offset.Data...)
	}
	return data
}

package cli

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pfrederiksen/o365-builds/internal/build"
	"github.com/pfrederiksen/o365-builds/internal/scraper"
	"github.com/pfrederiksen/o365-builds/internal/storage"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatCSV  OutputFormat = "csv"
)

// Valid reports whether f is a supported format.
func (f OutputFormat) Valid() bool {
	switch f {
	case FormatText, FormatJSON, FormatCSV:
		return true
	}
	return false
}

// WriteRecords writes records in the specified format
func WriteRecords(w io.Writer, records []build.Record, format OutputFormat, channel string) error {
	switch format {
	case FormatJSON:
		return storage.Encode(w, storage.NewSnapshot(channel, records))
	case FormatCSV:
		return writeCSV(w, records)
	case FormatText:
		return writeText(w, records)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func recordTable(records []build.Record) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"VersionNumber", "BuildNumber"})
	for _, r := range records {
		t.AppendRow(table.Row{r.VersionNumber(), r.Build})
	}
	return t
}

// writeCSV outputs a header line and one line per record.
func writeCSV(w io.Writer, records []build.Record) error {
	_, err := fmt.Fprintln(w, recordTable(records).RenderCSV())
	return err
}

// writeText outputs records as a human-readable table
func writeText(w io.Writer, records []build.Record) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No build records found.")
		return err
	}

	t := recordTable(records)
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	t.AppendFooter(table.Row{"Total", len(records)})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// WriteChannels lists every accepted channel with the pages it resolves to.
func WriteChannels(w io.Writer, sc *scraper.Scraper) error {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.AppendHeader(table.Row{"Channel", "Pages"})

	for _, c := range scraper.Channels() {
		urls, err := sc.URLs(c)
		if err != nil {
			return err
		}
		for i, u := range urls {
			name := ""
			if i == 0 {
				name = string(c)
			}
			t.AppendRow(table.Row{name, u})
		}
		t.AppendSeparator()
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

package entries

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	projectTypes "github.com/epicollect5/epicollect5-server-sub010/pkg/project/types"
)

// utf8BOM is prepended to CSV files for spreadsheet compatibility.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// EntryExporter streams parsed entries into one output file. Rows are written
// as they arrive; nothing is accumulated beyond the csv writer's buffer.
type EntryExporter struct {
	parser    *EntryParser
	writer    io.Writer
	csvWriter *csv.Writer
	format    string
	counter   int
	skipped   int
}

func NewEntryExporter(parser *EntryParser, writer io.Writer, format string) (*EntryExporter, error) {
	ee := &EntryExporter{
		parser: parser,
		writer: writer,
		format: format,
	}

	if err := ee.init(); err != nil {
		return nil, err
	}

	return ee, nil
}

func (ee *EntryExporter) init() error {
	var err error
	switch ee.format {
	case FORMAT_CSV:
		if _, err = ee.writer.Write(utf8BOM); err != nil {
			return err
		}
		ee.csvWriter = csv.NewWriter(ee.writer)
		err = ee.csvWriter.Write(ee.parser.HeaderRow())
	case FORMAT_JSON:
		_, err = ee.writer.Write([]byte(`{"data":[`))
	default:
		return fmt.Errorf("unsupported format: %s", ee.format)
	}
	return err
}

// WriteEntry serializes one row. A row whose payload cannot be decoded is
// logged and skipped; only I/O failures are returned, and they abort the
// current file.
func (ee *EntryExporter) WriteEntry(row projectTypes.EntryRow) error {
	cols, err := ee.parser.ParseEntry(row)
	if err != nil {
		slog.Error("skipping malformed entry", slog.String("entryUUID", row.EntryUUID), slog.String("error", err.Error()))
		ee.skipped++
		return nil
	}

	switch ee.format {
	case FORMAT_CSV:
		if err := ee.csvWriter.Write(ee.parser.EntryToStrList(cols)); err != nil {
			return err
		}
	case FORMAT_JSON:
		record, err := marshalRecord(ee.parser.EntryToFlatObj(cols))
		if err != nil {
			return err
		}
		if ee.counter > 0 {
			if _, err := ee.writer.Write([]byte(",")); err != nil {
				return err
			}
		}
		if _, err := ee.writer.Write(record); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format: %s", ee.format)
	}

	ee.counter++
	return nil
}

func (ee *EntryExporter) Finish() error {
	switch ee.format {
	case FORMAT_CSV:
		ee.csvWriter.Flush()
		return ee.csvWriter.Error()
	case FORMAT_JSON:
		_, err := ee.writer.Write([]byte("]}"))
		return err
	default:
		return fmt.Errorf("unsupported format: %s", ee.format)
	}
}

// marshalRecord serializes one record without HTML escaping, so media URLs
// keep their literal & and < characters.
func marshalRecord(record map[string]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(record); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Written reports the number of serialized rows.
func (ee *EntryExporter) Written() int {
	return ee.counter
}

// Skipped reports the number of rows dropped for malformed payloads.
func (ee *EntryExporter) Skipped() int {
	return ee.skipped
}

package results

import (
	"bytes"
	"encoding/binary"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/notargets/sobolsa/types"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// Sweep is a one parameter deterministic study, output against parameter value.
type Sweep struct {
	Param   string
	Values  []float64
	Outputs []float64
}

// SweepFileName is the default artifact name of a sweep over param.
func SweepFileName(param string) string {
	return fmt.Sprintf("deterministic_analysis_%s.csv", param)
}

// Write stores the sweep as "param,output" CSV in scientific notation, or as
// a spreadsheet when path ends in .xlsx
func (sw *Sweep) Write(path string) (err error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return sw.writeXLSX(path)
	}
	var (
		buf bytes.Buffer
		w   = csv.NewWriter(&buf)
	)
	if err = w.Write([]string{"param", "output"}); err != nil {
		return
	}
	for i, v := range sw.Values {
		if err = w.Write([]string{fmt.Sprintf("%e", v), fmt.Sprintf("%e", sw.Outputs[i])}); err != nil {
			return
		}
	}
	if w.Flush(); w.Error() != nil {
		return errors.Wrap(w.Error(), "encoding sweep")
	}
	return errors.Wrapf(os.WriteFile(path, buf.Bytes(), 0644), "writing %s", path)
}

func (sw *Sweep) writeXLSX(path string) (err error) {
	var (
		f     = excelize.NewFile()
		sheet = "Sheet1"
	)
	defer f.Close()
	if err = f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return
	}
	for c, h := range []string{"param", "output"} {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err = f.SetCellValue(sheet, cell, h); err != nil {
			return
		}
	}
	for r, v := range sw.Values {
		for c, x := range []float64{v, sw.Outputs[r]} {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err = f.SetCellValue(sheet, cell, x); err != nil {
				return
			}
		}
	}
	if err = f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return
}

// ReadSweep loads a sweep written by Write in either format.
func ReadSweep(path string) (sw *Sweep, err error) {
	var (
		rows [][]string
	)
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		var f *excelize.File
		if f, err = excelize.OpenFile(path); err != nil {
			return nil, errors.Wrapf(err, "opening %s", path)
		}
		defer f.Close()
		if rows, err = f.GetRows(f.GetSheetName(0)); err != nil {
			return nil, errors.Wrapf(err, "reading %s", path)
		}
	} else {
		var data []byte
		if data, err = os.ReadFile(path); err != nil {
			return nil, errors.Wrapf(err, "reading %s", path)
		}
		if rows, err = csv.NewReader(bytes.NewReader(data)).ReadAll(); err != nil {
			return nil, errors.Wrapf(err, "decoding %s", path)
		}
	}
	sw = &Sweep{}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 2 {
			return nil, errors.Errorf("%s: row %d has %d fields", path, i+1, len(row))
		}
		var x, y float64
		if x, err = strconv.ParseFloat(row[0], 64); err != nil {
			return nil, errors.Wrapf(err, "%s: row %d", path, i+1)
		}
		if y, err = strconv.ParseFloat(row[1], 64); err != nil {
			return nil, errors.Wrapf(err, "%s: row %d", path, i+1)
		}
		sw.Values = append(sw.Values, x)
		sw.Outputs = append(sw.Outputs, y)
	}
	return
}

// Digest fingerprints a paired sample, inputs and outputs in row order.
func Digest(ps *types.PairedSample) string {
	var (
		d   = xxhash.New()
		buf = make([]byte, 0, 8*(ps.Dim()+1))
	)
	for i, x := range ps.Inputs {
		buf = buf[:0]
		for _, v := range x {
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
		}
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(ps.Outputs[i]))
		_, _ = d.Write(buf)
	}
	return fmt.Sprintf("%016x", d.Sum64())
}

// DumpSample writes the sample as CSV with one column per parameter and the
// output last. A .zst path is zstd compressed.
func DumpSample(path string, ps *types.PairedSample) (err error) {
	var (
		buf bytes.Buffer
		w   = csv.NewWriter(&buf)
		row = make([]string, ps.Dim()+1)
	)
	if err = w.Write(append(append([]string{}, ps.Names...), "output")); err != nil {
		return
	}
	for i, x := range ps.Inputs {
		for j, v := range x {
			row[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		row[ps.Dim()] = strconv.FormatFloat(ps.Outputs[i], 'g', -1, 64)
		if err = w.Write(row); err != nil {
			return
		}
	}
	if w.Flush(); w.Error() != nil {
		return errors.Wrap(w.Error(), "encoding sample")
	}
	data := buf.Bytes()
	if strings.HasSuffix(path, ".zst") {
		var enc *zstd.Encoder
		if enc, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault)); err != nil {
			return errors.Wrap(err, "creating zstd encoder")
		}
		data = enc.EncodeAll(data, nil)
		_ = enc.Close()
	}
	return errors.Wrapf(os.WriteFile(path, data, 0644), "writing %s", path)
}

// LoadSample reads a sample written by DumpSample.
func LoadSample(path string) (ps *types.PairedSample, err error) {
	var (
		data []byte
		rows [][]string
	)
	if data, err = os.ReadFile(path); err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if strings.HasSuffix(path, ".zst") {
		var dec *zstd.Decoder
		if dec, err = zstd.NewReader(nil); err != nil {
			return nil, errors.Wrap(err, "creating zstd decoder")
		}
		defer dec.Close()
		if data, err = dec.DecodeAll(data, nil); err != nil {
			return nil, errors.Wrapf(err, "decompressing %s", path)
		}
	}
	if rows, err = csv.NewReader(bytes.NewReader(data)).ReadAll(); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	if len(rows) == 0 || len(rows[0]) < 2 {
		return nil, errors.Errorf("%s: missing header", path)
	}
	var (
		D     = len(rows[0]) - 1
		names = rows[0][:D]
		X     = make([]types.ParameterVector, 0, len(rows)-1)
		Y     = make([]float64, 0, len(rows)-1)
	)
	for i, row := range rows[1:] {
		x := make(types.ParameterVector, D)
		for j := 0; j < D; j++ {
			if x[j], err = strconv.ParseFloat(row[j], 64); err != nil {
				return nil, errors.Wrapf(err, "%s: row %d", path, i+2)
			}
		}
		y, err := strconv.ParseFloat(row[D], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: row %d", path, i+2)
		}
		X = append(X, x)
		Y = append(Y, y)
	}
	return types.NewPairedSampleFrom(names, X, Y)
}

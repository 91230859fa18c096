package icesheets

import (
	"fmt"
	"os"

	"github.com/ctessum/cdf"
)

// openNC opens a NetCDF classic file for reading. The caller closes fid.
func openNC(path string) (fid *os.File, f *cdf.File, err error) {
	fid, err = os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	f, err = cdf.Open(fid)
	if err != nil {
		fid.Close()
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrInputFormat, path, err)
	}
	return fid, f, nil
}

func hasVar(f *cdf.File, name string) bool {
	for _, v := range f.Header.Variables() {
		if v == name {
			return true
		}
	}
	return false
}

func varLen(f *cdf.File, name string) int {
	n := 1
	for _, d := range f.Header.Lengths(name) {
		n *= d
	}
	return n
}

// ncFloats reads a whole variable as float64, accepting float ("f4") or
// double ("f8") storage.
func ncFloats(f *cdf.File, name string) ([]float64, error) {
	if !hasVar(f, name) {
		return nil, fmt.Errorf("%w: variable %q not found", ErrInputFormat, name)
	}
	n := varLen(f, name)
	if b32 := make([]float32, n); readWhole(f, name, b32) == nil {
		out := make([]float64, n)
		for i, v := range b32 {
			out[i] = float64(v)
		}
		return out, nil
	}
	b64 := make([]float64, n)
	if err := readWhole(f, name, b64); err != nil {
		return nil, fmt.Errorf("%w: variable %q: %v", ErrInputFormat, name, err)
	}
	return b64, nil
}

// ncInts reads a whole variable as int, accepting int, short, float or
// double storage.
func ncInts(f *cdf.File, name string) ([]int, error) {
	if !hasVar(f, name) {
		return nil, fmt.Errorf("%w: variable %q not found", ErrInputFormat, name)
	}
	n := varLen(f, name)
	if b := make([]int32, n); readWhole(f, name, b) == nil {
		out := make([]int, n)
		for i, v := range b {
			out[i] = int(v)
		}
		return out, nil
	}
	if b := make([]int16, n); readWhole(f, name, b) == nil {
		out := make([]int, n)
		for i, v := range b {
			out[i] = int(v)
		}
		return out, nil
	}
	fs, err := ncFloats(f, name)
	if err != nil {
		return nil, err
	}
	out := make([]int, n)
	for i, v := range fs {
		out[i] = int(v)
	}
	return out, nil
}

func readWhole(f *cdf.File, name string, buf interface{}) error {
	r := f.Reader(name, nil, nil)
	_, err := r.Read(buf)
	return err
}
